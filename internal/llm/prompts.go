package llm

import (
	"encoding/json"
	"fmt"
)

// System prompts.  Temperature is pinned to zero by the client, so these lean
// on strictness rather than creativity.

const nplSystemPrompt = "You are a highly deterministic data extraction engine. " +
	"Your ONLY task is to output a single, valid JSON object that strictly adheres to the provided JSON Schema. " +
	"Do not include any conversational text, explanations, or extraneous characters."

const standardsSystemPrompt = `You are a highly deterministic data extraction engine.
Your ONLY task is to output a single valid JSON object that conforms EXACTLY to the provided JSON Schema.

CRITICAL RULES:
- Use ONLY the information explicitly present within the 'TEXT TO ANALYZE' block.
- DO NOT infer or hallucinate standards not explicitly written in the text.
- DO NOT include any explanations, commentary, or text outside the JSON object.`

const accessionsSystemPrompt = nplSystemPrompt

// JSON Schemas embedded in the user prompts.

const nplSchemaJSON = `{
    "type": "object",
    "properties": {
        "references": {
            "type": "array",
            "description": "A list of non-patent literature references found in the text.",
            "items": {
                "type": "object",
                "properties": {
                    "title": {"type": "string", "description": "The main title of the article or document."},
                    "author": {"type": "array", "items": {"type": "string"}, "description": "A list of authors' names."},
                    "publisher": {"type": "string", "description": "The journal, conference name, or publisher."},
                    "publication_date": {"type": "string", "description": "The date of publication, in any format."},
                    "volume": {"type": "string", "description": "The volume number of the publication (if applicable)."},
                    "pages": {"type": "string", "description": "The page range or single page number (if applicable)."},
                    "url": {"type": "string", "description": "A URL or DOI associated with the reference."}
                },
                "required": ["title", "author", "publisher", "publication_date", "volume", "pages", "url"]
            }
        }
    },
    "required": ["references"]
}`

const standardsSchemaJSON = `{
    "type": "object",
    "properties": {
        "references": {
            "type": "array",
            "description": "A list of standard references found in the text.",
            "items": {
                "type": "object",
                "properties": {
                    "title": {"type": "string", "description": "A short descriptive text following or associated with the standard (if present, else empty string)."},
                    "standardisation_body": {"type": "string", "enum": ["3GPP", "IEEE", "ISO", "W3C"], "description": "The organization name. Must be one of the enumerated values."},
                    "accession_number": {"type": "string", "description": "The alphanumeric code uniquely identifying the standard (e.g., TS 23.501, 802.11be)."},
                    "version": {"type": "string", "description": "The version or edition of the standard (if present, else empty string)."}
                },
                "required": ["title", "standardisation_body", "accession_number", "version"]
            }
        }
    },
    "required": ["references"]
}`

const accessionsSchemaJSON = `{
    "type": "object",
    "properties": {
        "accessions": {
            "type": "array",
            "description": "A list of accession IDs (CAS numbers, GenBank, etc.) found in the text.",
            "items": {
                "type": "object",
                "properties": {
                    "type": {"type": "string", "description": "The type of accession ID (e.g., CAS, Uniprot, GenBank)."},
                    "id": {"type": "string", "description": "The unique accession number."}
                },
                "required": ["type", "id"]
            }
        }
    },
    "required": ["accessions"]
}`

func nplUserPrompt(text string) string {
	return fmt.Sprintf(`From the following text, extract all non-patent publication references.
Ensure the output is a single JSON object that strictly conforms to the JSON schema provided below.

Mandatory rules:
- If no references are found, return a json object with an empty 'references' array.
- If there are multiple authors, provide them in a comma (,) separated array of strings.
- Ensure every key is followed by a colon (:), even if the value is an empty string ("").
- **CRITICAL RULE: The key and its value MUST be separated by a colon (:), NOT a comma (,) in the JSON object. For example, it must be "volume": "42", not "volume", "42".**
- Only references with a date should be extracted.
- Please do not extract patent applications and publications.

--- JSON SCHEMA ---
%s
--- END OF JSON SCHEMA ---

--- TEXT TO ANALYZE ---
%s
--- END OF TEXT ---

ONLY output the JSON object. Do not output anything else.`, nplSchemaJSON, text)
}

func standardsUserPrompt(text string, g3ppCandidates, ieeeCandidates []string) string {
	g3pp := candidateJSON(g3ppCandidates)
	ieee := candidateJSON(ieeeCandidates)
	return fmt.Sprintf(`The text may contain references to standards from the following lists:

3GPP candidate standards: %s
IEEE candidate standards: %s

If any of these standards are indeed mentioned in the text, extract them as structured references.

Each reference must include:
- "standardisation_body": the organization name (e.g., "3GPP", "IEEE")
- "accession_number": the alphanumeric code uniquely identifying the standard (e.g., "TS 23.501", "802.11be")
- "title": a short descriptive text following or associated with the standard (if present, else "")
- "version": the version or edition of the standard (if present, else "")

RULES:
- If no references are found, return a JSON object with an empty "references" array.
- Every key must appear in the JSON output, even if its value is an empty string "".
- Only include references explicitly appearing in the current text.
- Do not merge, infer, or deduplicate across previous requests.

--- JSON SCHEMA ---
%s
--- END OF JSON SCHEMA ---

--- TEXT TO ANALYZE ---
%s
--- END OF TEXT ---

ONLY output the JSON object. Do not output anything else.`, g3pp, ieee, standardsSchemaJSON, text)
}

func accessionsUserPrompt(text string) string {
	return fmt.Sprintf(`From the following text, extract all biological and chemical database accession IDs
(e.g., Genbank, Uniprot, Swissprot, PDB, RefSeq, NCBI, CAS, EMBL) and their corresponding database type.
Ensure the output is a single JSON object that strictly conforms to the JSON schema provided below.

--- JSON SCHEMA ---
%s
--- END OF JSON SCHEMA ---

--- TEXT TO ANALYZE ---
%s
--- END OF TEXT ---

ONLY output the JSON object. Do not output anything else.`, accessionsSchemaJSON, text)
}

// candidateJSON renders a candidate list as a JSON array for prompt injection.
// A nil slice renders as [] rather than null.
func candidateJSON(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}
