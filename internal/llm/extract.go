package llm

import (
	"context"
	"encoding/json"

	"github.com/brankow/citation-extraction/internal/domain/citation"
	apperrors "github.com/brankow/citation-extraction/pkg/errors"
)

// Operation labels used for metrics and logging.
const (
	opReferences = "references"
	opStandards  = "standards"
	opAccessions = "accessions"
)

// ExtractReferences asks the model for the non-patent literature references
// in text.  An empty slice with a nil error means the model found none.
func (c *Client) ExtractReferences(ctx context.Context, text string) ([]citation.Reference, error) {
	content, err := c.complete(ctx, opReferences, c.newRequest(nplSystemPrompt, nplUserPrompt(text)))
	if err != nil {
		return nil, err
	}

	var doc nplReferencesDoc
	if err := decodeResponse(CleanResponse(content), &doc); err != nil {
		return nil, err
	}
	refs := make([]citation.Reference, 0, len(doc.References))
	for _, r := range doc.References {
		refs = append(refs, r.toReference())
	}
	return refs, nil
}

// ExtractStandards asks the model to structure the technical-standard
// mentions in text.  The candidate lists come from the deterministic 3GPP and
// IEEE pre-scans and bound what the model may extract.
func (c *Client) ExtractStandards(ctx context.Context, text string, g3ppCandidates, ieeeCandidates []string) ([]citation.Standard, error) {
	prompt := standardsUserPrompt(text, g3ppCandidates, ieeeCandidates)
	content, err := c.complete(ctx, opStandards, c.newRequest(standardsSystemPrompt, prompt))
	if err != nil {
		return nil, err
	}

	var doc standardsDoc
	if err := decodeResponse(content, &doc); err != nil {
		return nil, err
	}
	stds := make([]citation.Standard, 0, len(doc.References))
	for _, r := range doc.References {
		stds = append(stds, r.toStandard())
	}
	return stds, nil
}

// ExtractAccessions asks the model for database accession identifiers
// (GenBank, Uniprot, CAS, and the like) in text.
func (c *Client) ExtractAccessions(ctx context.Context, text string) ([]citation.Accession, error) {
	content, err := c.complete(ctx, opAccessions, c.newRequest(accessionsSystemPrompt, accessionsUserPrompt(text)))
	if err != nil {
		return nil, err
	}

	var doc accessionsDoc
	if err := decodeResponse(content, &doc); err != nil {
		return nil, err
	}
	accs := make([]citation.Accession, 0, len(doc.Accessions))
	for _, a := range doc.Accessions {
		accs = append(accs, a.toAccession())
	}
	return accs, nil
}

// decodeResponse isolates the JSON object in raw model output and unmarshals
// it into out.
func decodeResponse(content string, out interface{}) error {
	obj, err := ExtractJSON(content)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeLLMMalformedJSON, "parse extracted JSON").
			WithDetail(snippet(obj))
	}
	return nil
}
