// Package splitter breaks long patent-application paragraphs into chunks
// small enough for a single language-model call.  Splitting is an ordered
// cascade of structural rules: the first rule that finds a split point wins,
// and every resulting part is handed to the remaining rules in turn.  The
// cascade prefers natural boundaries (paragraph breaks, enumerations, figure
// references) and never invents or drops prose; only patent identifiers and
// arrow tokens are removed, and those are replaced by stable placeholders.
package splitter

import (
	"regexp"
	"strings"
)

// Marker tokens prepended to parts whose content is exemplary rather than a
// primary claim.  Downstream prompt builders key off these.
const (
	ExampleMarker    = "EXAMPLE"
	EmbodimentMarker = "EMBODIMENT"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config bounds the splitter.  Threshold is the chunk size the cascade aims
// for; parts above it that no rule can break are returned as-is.
type Config struct {
	Threshold int
	MaxDepth  int
}

// DefaultConfig returns the production limits.
func DefaultConfig() Config {
	return Config{Threshold: 1000, MaxDepth: 32}
}

// ---------------------------------------------------------------------------
// Split rules
// ---------------------------------------------------------------------------

// A Rule is one pure splitting strategy.  Split returns the input unchanged
// as a single element when it finds no applicable split point, and two or
// more parts otherwise.  Rules never return empty strings.
type Rule struct {
	Name  string
	Split func(text string) []string
}

var (
	reDotDoubleNewline = regexp.MustCompile(`\.\n{2,}`)
	rePunctDash        = regexp.MustCompile(`([.,:;])\n(-)`)
	reFigure           = regexp.MustCompile(`([.,:;])\n*((?:FIG|FIGURE|Fig)\.?\s[0-9]{1,3})`)
	reNumberedItem     = regexp.MustCompile(`([.,:;])\n(\(?[0-9]{1,2}\)?\.?)`)
	reLetteredItem     = regexp.MustCompile(`([.,:;])\n+([a-zA-Z]\))`)
	reOrDash           = regexp.MustCompile(`(\sor)(\n-\s)`)
	reZB               = regexp.MustCompile(` z\. B\. `)
	reArrow            = regexp.MustCompile(`\s--\s?>\s*`)
	reExamplePhrase    = regexp.MustCompile(`(?i)\b(?:for example|as an example|e\.g\.)`)
	reEmbodiment       = regexp.MustCompile(`(?i)\bembodiment`)
)

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// cut describes one split point: the previous part ends at prevEnd and the
// next part starts at nextStart.  Characters between the two are dropped.
type cut struct {
	prevEnd   int
	nextStart int
}

// applyCuts slices text at the given points, trims each part, drops empties,
// and prefixes every part after a cut with marker (when non-empty).  Fewer
// than two surviving parts means the rule did not really split, so the
// original text comes back untouched.
func applyCuts(text string, cuts []cut, marker string) []string {
	if len(cuts) == 0 {
		return []string{text}
	}
	var parts []string
	appendPart := func(p string, afterCut bool) {
		p = strings.TrimSpace(p)
		if p == "" {
			return
		}
		if afterCut && marker != "" {
			p = marker + " " + p
		}
		parts = append(parts, p)
	}
	last := 0
	for i, c := range cuts {
		appendPart(text[last:c.prevEnd], i > 0)
		last = c.nextStart
	}
	appendPart(text[last:], true)
	if len(parts) < 2 {
		return []string{text}
	}
	return parts
}

// pairCuts builds cuts from two-group matches where the delimiter stays with
// the preceding part and the second group opens the next part.
func pairCuts(text string, re *regexp.Regexp) []cut {
	var cuts []cut
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		cuts = append(cuts, cut{prevEnd: loc[2] + 1, nextStart: loc[4]})
	}
	return cuts
}

func splitDotDoubleNewline(text string) []string {
	normalized := normalizeNewlines(text)
	if !reDotDoubleNewline.MatchString(normalized) {
		return []string{text}
	}
	var parts []string
	for _, seg := range reDotDoubleNewline.Split(normalized, -1) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if !strings.HasSuffix(seg, ".") && !strings.HasSuffix(seg, "?") && !strings.HasSuffix(seg, "!") {
			seg += "."
		}
		parts = append(parts, seg)
	}
	if len(parts) < 2 {
		return []string{text}
	}
	return parts
}

func splitPunctuationDash(text string) []string {
	normalized := normalizeNewlines(text)
	return applyCuts(normalized, pairCuts(normalized, rePunctDash), "")
}

func splitFigureEnumeration(text string) []string {
	normalized := normalizeNewlines(text)
	return applyCuts(normalized, pairCuts(normalized, reFigure), "")
}

func splitNumberedItem(text string) []string {
	normalized := normalizeNewlines(text)
	return applyCuts(normalized, pairCuts(normalized, reNumberedItem), "")
}

func splitLetteredItem(text string) []string {
	normalized := normalizeNewlines(text)
	return applyCuts(normalized, pairCuts(normalized, reLetteredItem), "")
}

func splitOrDash(text string) []string {
	normalized := normalizeNewlines(text)
	var cuts []cut
	for _, loc := range reOrDash.FindAllStringSubmatchIndex(normalized, -1) {
		// " or" stays with the preceding part, the dash opens the next.
		cuts = append(cuts, cut{prevEnd: loc[3], nextStart: loc[4]})
	}
	return applyCuts(normalized, cuts, "")
}

func splitZB(text string) []string {
	var cuts []cut
	for _, loc := range reZB.FindAllStringIndex(text, -1) {
		// The leading space stays with the "z. B." continuation.
		cuts = append(cuts, cut{prevEnd: loc[0] + 1, nextStart: loc[0] + 1})
	}
	return applyCuts(text, cuts, "")
}

func splitArrow(text string) []string {
	var cuts []cut
	for _, loc := range reArrow.FindAllStringIndex(text, -1) {
		// The arrow token itself is dropped.
		cuts = append(cuts, cut{prevEnd: loc[0], nextStart: loc[1]})
	}
	return applyCuts(text, cuts, "")
}

func markerCuts(text string, re *regexp.Regexp) []cut {
	var cuts []cut
	for _, loc := range re.FindAllStringIndex(text, -1) {
		cuts = append(cuts, cut{prevEnd: loc[0], nextStart: loc[0]})
	}
	return cuts
}

func splitExamplePhrase(text string) []string {
	return applyCuts(text, markerCuts(text, reExamplePhrase), ExampleMarker)
}

func splitEmbodiment(text string) []string {
	return applyCuts(text, markerCuts(text, reEmbodiment), EmbodimentMarker)
}

// ---------------------------------------------------------------------------
// Splitter
// ---------------------------------------------------------------------------

// Splitter applies the rule cascade.  A single instance is safe for
// concurrent use; it holds only compiled patterns and limits.
type Splitter struct {
	threshold int
	maxDepth  int
	patents   patentMatcher
	rules     []Rule
}

// New builds a Splitter with the default rule order.  The patent rule runs
// first because identifier spans must be isolated before any structural rule
// can cut through them.
func New(cfg Config) *Splitter {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultConfig().Threshold
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultConfig().MaxDepth
	}
	s := &Splitter{
		threshold: cfg.Threshold,
		maxDepth:  cfg.MaxDepth,
		patents:   newPatentMatcher(),
	}
	s.rules = []Rule{
		{Name: "patent_reference", Split: s.splitPatentReference},
		{Name: "dot_double_newline", Split: splitDotDoubleNewline},
		{Name: "punctuation_dash", Split: splitPunctuationDash},
		{Name: "figure_enumeration", Split: splitFigureEnumeration},
		{Name: "numbered_item", Split: splitNumberedItem},
		{Name: "lettered_item", Split: splitLetteredItem},
		{Name: "or_dash", Split: splitOrDash},
		{Name: "z_b", Split: splitZB},
		{Name: "arrow", Split: splitArrow},
		{Name: "example_phrase", Split: splitExamplePhrase},
		{Name: "embodiment", Split: splitEmbodiment},
	}
	return s
}

// Threshold returns the target maximum chunk size.
func (s *Splitter) Threshold() int { return s.threshold }

// Rules returns the rule order, for diagnostics.
func (s *Splitter) Rules() []Rule { return s.rules }

func (s *Splitter) splitPatentReference(text string) []string {
	var cuts []cut
	for _, pos := range s.patents.boundaries(text) {
		cuts = append(cuts, cut{prevEnd: pos, nextStart: pos})
	}
	return applyCuts(text, cuts, "")
}

// Split decomposes one raw paragraph into cleaned chunks.  Text at or below
// the threshold passes through untouched unless it carries a patent
// identifier, which always forces a cascade pass.  Every returned chunk has
// had patent identifiers collapsed to the placeholder.  Whitespace-only
// input yields an empty slice.
func (s *Splitter) Split(text string) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	var parts []string
	if len(clean) <= s.threshold && !s.patents.matches(clean) {
		parts = []string{clean}
	} else {
		parts = s.cascade(clean, s.rules, 0)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = s.patents.substitute(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Oversized returns the indexes of parts still above the threshold, for
// caller-side diagnostics.  A non-empty result is not an error; it means no
// rule could break the text further.
func (s *Splitter) Oversized(parts []string) []int {
	var idx []int
	for i, p := range parts {
		if len(p) > s.threshold {
			idx = append(idx, i)
		}
	}
	return idx
}

// cascade tries each rule in order on text.  The first rule to produce two
// or more parts wins, and each part descends into the remaining rules only.
// Every level strips at least one rule, so the depth guard is a backstop
// rather than a working limit.
func (s *Splitter) cascade(text string, rules []Rule, depth int) []string {
	if depth >= s.maxDepth {
		return []string{text}
	}
	for i, rule := range rules {
		parts := rule.Split(text)
		if len(parts) < 2 {
			continue
		}
		rest := rules[i+1:]
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, s.cascade(p, rest, depth+1)...)
		}
		return out
	}
	return []string{text}
}
