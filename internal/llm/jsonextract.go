package llm

import (
	"regexp"
	"strings"

	apperrors "github.com/brankow/citation-extraction/pkg/errors"
)

var (
	reFenceStart = regexp.MustCompile("(?im)^\\s*`{3,}json\\s*")
	reFenceEnd   = regexp.MustCompile("(?m)\\s*`{3,}\\s*$")
	reThinkTags  = regexp.MustCompile(`(?i)<\s*/?\s*think\s*>`)

	// A comma directly before a closing brace or bracket is invalid JSON but a
	// frequent model output.
	reTrailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// CleanResponse neutralizes the "unknown" placeholders some models emit for
// absent fields, so they decode as empty values.  Applied only on the
// literature-reference path, where the placeholders are observed in practice.
func CleanResponse(text string) string {
	replacer := strings.NewReplacer(
		`["unknown"]`, `[]`,
		`["Unknown"]`, `[]`,
		`"unknown"`, `""`,
		`"Unknown"`, `""`,
	)
	return replacer.Replace(text)
}

// ExtractJSON isolates the first balanced JSON object inside raw model output
// and repairs the defects models commonly introduce: markdown code fences,
// think tags, non-breaking spaces, trailing commas, and escaped newlines
// between tokens.  The returned string is ready for json.Unmarshal.
func ExtractJSON(raw string) (string, error) {
	cleaned := strings.ReplaceAll(raw, "\u00a0", " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = reFenceStart.ReplaceAllString(cleaned, "")
	cleaned = reFenceEnd.ReplaceAllString(cleaned, "")
	cleaned = reThinkTags.ReplaceAllString(cleaned, "")

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return "", apperrors.New(apperrors.ErrCodeLLMMalformedJSON, "no JSON object in model output").
			WithDetail(snippet(raw))
	}

	// Balanced-brace scan from the first opening brace.  Braces inside string
	// literals do not count.
	depth := 0
	inString := false
	escaped := false
	end := -1
scan:
	for i := start; i < len(cleaned); i++ {
		c := cleaned[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				end = i + 1
				break scan
			}
		}
	}
	if end < 0 {
		return "", apperrors.New(apperrors.ErrCodeLLMMalformedJSON, "unbalanced braces in model output").
			WithDetail(snippet(cleaned[start:]))
	}

	obj := cleaned[start:end]
	obj = reTrailingComma.ReplaceAllString(obj, "$1")
	// Some models double-escape the newlines of pretty-printed output.
	obj = strings.ReplaceAll(obj, `\n`, "\n")
	return obj, nil
}

// snippet truncates s for inclusion in error detail.
func snippet(s string) string {
	const max = 100
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
