package splitter

import (
	"regexp"
	"strings"
)

// PatentPlaceholder replaces patent and application identifiers before text
// is handed to the language model.
const PatentPlaceholder = "PATENT"

// patentIDPatterns is the identifier grammar, one entry per jurisdiction or
// numbering era.  The entries are joined into a single alternation; order
// matters only where formats overlap, so the old US era precedes the new one.
// Kind codes ("A1", "B2") are folded into the identifier where present.
var patentIDPatterns = []struct {
	name    string
	pattern string
}{
	{"wo", `WO\s?\d{2,4}/\d+(?:\s?[A-Z]\d?\b)?`},
	{"pct", `PCT/[A-Z]{2}\s?\d{2,4}/\d+`},
	{"ep", `EP\s?\d+[\s-]?\d+[\s-]?\d+(?:\s?[A-Z]\d?\b)?`},
	{"us-old", `US\s?\d{2}/\d+`},
	{"us-new", `US[\s-]?[A-Z]{0,2}\s?\d{4}[-/]?\d+(?:\s?[A-Z]\d?\b)?`},
	{"jp", `JP\s?[HS]?\d{1,4}[-/]\d{4,7}(?:\s?[A-Z]\d?\b)?`},
	{"cn", `CN\s?\d{6,12}(?:\.\d)?(?:\s?[A-Z]\d?\b)?`},
	{"de-long", `DE\s?\d{2}\s?\d{4}\s?\d{3}\s?\d{3}(?:\.\d)?(?:\s?[A-Z]\d?\b)?`},
	{"de-short", `DE\s?\d{6,8}(?:\s?[A-Z]\d?\b)?`},
	{"gb", `GB\s?\d{6,8}(?:\s?[A-Z]\d?\b)?`},
	{"appl-no", `(?:Patent\s+)?(?:Application|Publication)\s+No\.?\s*\d[\d/,.\-]*\d`},
}

func patentIDAlternation() string {
	alts := make([]string, 0, len(patentIDPatterns))
	for _, p := range patentIDPatterns {
		alts = append(alts, p.pattern)
	}
	return strings.Join(alts, "|")
}

// newPatentMatcher compiles the two forms the grammar is used in: an
// identifier preceded by a separator character, and an identifier opening
// the string.
func newPatentMatcher() patentMatcher {
	ids := patentIDAlternation()
	return patentMatcher{
		afterSeparator: regexp.MustCompile(`(?i)([,;.\s])(` + ids + `)`),
		atStart:        regexp.MustCompile(`(?i)^\s*(` + ids + `)`),
	}
}

type patentMatcher struct {
	afterSeparator *regexp.Regexp
	atStart        *regexp.Regexp
}

func (m patentMatcher) matches(text string) bool {
	return m.atStart.MatchString(text) || m.afterSeparator.MatchString(text)
}

// substitute rewrites every identifier to the placeholder.  Mid-string
// occurrences keep the separator character that precedes them; an identifier
// opening the string is replaced wholesale.
func (m patentMatcher) substitute(text string) string {
	text = m.afterSeparator.ReplaceAllString(text, "${1}"+PatentPlaceholder)
	return strings.TrimSpace(m.atStart.ReplaceAllString(text, PatentPlaceholder))
}

// boundaries returns the split points of the separator-preceded matches.
// Each part after a boundary begins with the separator and the identifier;
// the placeholder substitution pass collapses them later.
func (m patentMatcher) boundaries(text string) []int {
	var cuts []int
	for _, loc := range m.afterSeparator.FindAllStringSubmatchIndex(text, -1) {
		cuts = append(cuts, loc[2])
	}
	return cuts
}
