// Package redact substitutes noisy spans with stable placeholder tokens
// before text is embedded in the accession-extraction prompt.  Sequence
// identifiers, base-pair counts, positional ranges, weight percentages, and
// overlong formula-like tokens carry no citation signal but burn model
// context, so they are collapsed up front.
package redact

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Placeholder tokens.  All of them are shorter than the default token-length
// limit, so re-running the redactor over its own output is a no-op.
const (
	SequenceIDToken    = "SEQUENCE_ID"
	BasePairToken      = "BASEPAIR"
	PositionRangeToken = "POSITION_RANGE"
	RatioToken         = "[A_DEFINED_RATIO]"
	AmountToken        = "[A_CERTAIN_AMOUNT]"
	FormulaToken       = "FORMULA"
)

var (
	reSequenceID = regexp.MustCompile(`(?i)\bSEQ\.?\s*ID\.?\s*NOs?\.?:?\s*\d+`)
	reBasePair   = regexp.MustCompile(`(?i)\b\d+[\s-]?bp\b`)
	rePositions  = regexp.MustCompile(`(?i)\bpositions?\s+\d+\s+to\s+\d+\b`)
	// The ratio form must be rewritten before the single form, or each half
	// of "60wt%/40wt%" would be consumed separately.
	reWtRatio  = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*wt\.?%\s*/\s*\d+(?:\.\d+)?\s*wt\.?%`)
	reWtSingle = regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s*wt\.?%`)
	reToken    = regexp.MustCompile(`\S+`)
)

// Config bounds the overlong-token rule.
type Config struct {
	// MaxTokenLength is the longest whitespace-delimited token kept verbatim.
	MaxTokenLength int
}

// DefaultConfig returns the production limit.
func DefaultConfig() Config {
	return Config{MaxTokenLength: 20}
}

// Redactor applies the ordered transforms.  Stateless and safe for
// concurrent use.
type Redactor struct {
	maxTokenLength int
}

func New(cfg Config) *Redactor {
	if cfg.MaxTokenLength <= 0 {
		cfg.MaxTokenLength = DefaultConfig().MaxTokenLength
	}
	return &Redactor{maxTokenLength: cfg.MaxTokenLength}
}

// Apply runs every transform in order and returns the redacted text.
func (r *Redactor) Apply(text string) string {
	text = reSequenceID.ReplaceAllString(text, SequenceIDToken)
	text = reBasePair.ReplaceAllString(text, BasePairToken)
	text = rePositions.ReplaceAllString(text, PositionRangeToken)
	text = reWtRatio.ReplaceAllString(text, RatioToken)
	text = reWtSingle.ReplaceAllString(text, AmountToken)
	return r.redactLongTokens(text)
}

// redactLongTokens replaces any whitespace-delimited token above the length
// limit.  Trailing sentence punctuation is kept so the surrounding prose
// still reads as a sentence.
func (r *Redactor) redactLongTokens(text string) string {
	return reToken.ReplaceAllStringFunc(text, func(token string) string {
		if utf8.RuneCountInString(token) <= r.maxTokenLength {
			return token
		}
		trimmed := strings.TrimRight(token, ".,;:")
		if utf8.RuneCountInString(trimmed) <= r.maxTokenLength {
			return token
		}
		return FormulaToken + token[len(trimmed):]
	})
}
