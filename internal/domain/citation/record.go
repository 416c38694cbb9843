// Package citation holds the extracted-citation domain model: the reference
// records produced by the language model, the correction heuristics and skip
// filters applied to them, and the catalog that aggregates every citation of
// a document and serializes it to the target XML schema.
package citation

import "strings"

// Reference is one non-patent-literature record as extracted by the model.
// Values are plain strings; absent fields are empty.
type Reference struct {
	Title           string
	Authors         []string
	Publisher       string
	PublicationDate string
	Volume          string
	Pages           string
	URL             string
}

// AuthorString joins the author list the way the catalog and the filters
// compare it.
func (r Reference) AuthorString() string {
	return strings.TrimSpace(strings.Join(r.Authors, ", "))
}

// HasAuthors reports whether any author entry carries content.
func (r Reference) HasAuthors() bool {
	for _, a := range r.Authors {
		if strings.TrimSpace(a) != "" {
			return true
		}
	}
	return false
}

// normalized trims every field so the heuristics and filters never see
// padding or all-whitespace values.
func (r Reference) normalized() Reference {
	out := Reference{
		Title:           strings.TrimSpace(r.Title),
		Publisher:       strings.TrimSpace(r.Publisher),
		PublicationDate: strings.TrimSpace(r.PublicationDate),
		Volume:          strings.TrimSpace(r.Volume),
		Pages:           strings.TrimSpace(r.Pages),
		URL:             strings.TrimSpace(r.URL),
	}
	for _, a := range r.Authors {
		if a = strings.TrimSpace(a); a != "" {
			out.Authors = append(out.Authors, a)
		}
	}
	return out
}

// Accession is one biological or chemical database identifier.
type Accession struct {
	Type string
	ID   string
}

// Standard is one technical-standard reference (3GPP, IEEE).
type Standard struct {
	Title           string
	Body            string
	Number          string
	Version         string
	PublicationDate string
	URL             string
}

// IsCanonicalDate reports whether s is the 8-digit DDMMYYYY form the catalog
// expects.
func IsCanonicalDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
