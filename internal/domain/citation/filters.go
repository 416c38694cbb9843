package citation

import "strings"

// refFacts precomputes field presence for the skip conditions.
type refFacts struct {
	ref          Reference
	hasAuthor    bool
	hasTitle     bool
	hasDate      bool
	hasPublisher bool
	hasVolume    bool
	hasPages     bool
	hasURL       bool
	authorString string
}

func factsOf(ref Reference) refFacts {
	ref = ref.normalized()
	return refFacts{
		ref:          ref,
		hasAuthor:    ref.HasAuthors(),
		hasTitle:     ref.Title != "",
		hasDate:      ref.PublicationDate != "",
		hasPublisher: ref.Publisher != "",
		hasVolume:    ref.Volume != "",
		hasPages:     ref.Pages != "",
		hasURL:       ref.URL != "",
		authorString: ref.AuthorString(),
	}
}

// isBareCitation means author and date are present and nothing beyond title
// could identify the work.
func (f refFacts) isBareCitation() bool {
	return f.hasAuthor && f.hasDate && !f.hasPublisher && !f.hasVolume && !f.hasPages && !f.hasURL
}

// skipCondition is one reason to drop a reference.  Order matters: the first
// matching condition names the drop.
type skipCondition struct {
	name  string
	match func(refFacts) bool
}

var skipConditions = []skipCondition{
	{"standards_in_date", func(f refFacts) bool {
		return f.hasDate && ContainsStandardsBody(f.ref.PublicationDate)
	}},
	{"standards_in_publisher", func(f refFacts) bool {
		return f.hasPublisher && ContainsStandardsBody(f.ref.Publisher)
	}},
	{"title_only", func(f refFacts) bool {
		return f.hasTitle && !f.hasAuthor && !f.hasPublisher && !f.hasDate && !f.hasVolume && !f.hasPages && !f.hasURL
	}},
	{"publisher_and_date_only", func(f refFacts) bool {
		return f.hasPublisher && f.hasDate && !f.hasAuthor && !f.hasTitle && !f.hasVolume && !f.hasPages && !f.hasURL
	}},
	{"completely_empty", func(f refFacts) bool {
		return !f.hasAuthor && !f.hasTitle && !f.hasDate && !f.hasPublisher && !f.hasVolume && !f.hasPages && !f.hasURL
	}},
	{"date_only", func(f refFacts) bool {
		return f.hasDate && !f.hasAuthor && !f.hasTitle && !f.hasPublisher && !f.hasVolume && !f.hasPages && !f.hasURL
	}},
	{"author_in_title", func(f refFacts) bool {
		return f.isBareCitation() && f.hasTitle &&
			strings.Contains(strings.ToLower(f.ref.Title), strings.ToLower(f.authorString))
	}},
	{"author_and_date_only", func(f refFacts) bool {
		return f.isBareCitation() && !f.hasTitle
	}},
}

// ShouldSkipReference applies the ordered skip conditions to one reference.
// It returns the name of the first matching condition, or ok=false when the
// reference should be kept.
func ShouldSkipReference(ref Reference) (reason string, skip bool) {
	f := factsOf(ref)
	for _, c := range skipConditions {
		if c.match(f) {
			return c.name, true
		}
	}
	return "", false
}

// ShouldSkipAccession drops accession entries whose type is missing or the
// literal "none", or whose identifier is missing.
func ShouldSkipAccession(acc Accession) (reason string, skip bool) {
	accType := strings.TrimSpace(acc.Type)
	if accType == "" || strings.EqualFold(accType, "none") {
		return "missing_type", true
	}
	if strings.TrimSpace(acc.ID) == "" {
		return "missing_id", true
	}
	return "", false
}
