package llm

import "github.com/brankow/citation-extraction/internal/domain/citation"

// Wire types mirroring the JSON the model is asked to produce.  Field names
// match the schema embedded in the prompts; conversion to the domain types
// happens immediately after decoding so nothing downstream sees these.

type nplReference struct {
	Title           string   `json:"title"`
	Author          []string `json:"author"`
	Publisher       string   `json:"publisher"`
	PublicationDate string   `json:"publication_date"`
	Volume          string   `json:"volume"`
	Pages           string   `json:"pages"`
	URL             string   `json:"url"`
}

type nplReferencesDoc struct {
	References []nplReference `json:"references"`
}

func (r nplReference) toReference() citation.Reference {
	return citation.Reference{
		Title:           r.Title,
		Authors:         r.Author,
		Publisher:       r.Publisher,
		PublicationDate: r.PublicationDate,
		Volume:          r.Volume,
		Pages:           r.Pages,
		URL:             r.URL,
	}
}

type standardReference struct {
	Title               string `json:"title"`
	StandardisationBody string `json:"standardisation_body"`
	AccessionNumber     string `json:"accession_number"`
	Version             string `json:"version"`
}

type standardsDoc struct {
	References []standardReference `json:"references"`
}

func (r standardReference) toStandard() citation.Standard {
	return citation.Standard{
		Title:   r.Title,
		Body:    r.StandardisationBody,
		Number:  r.AccessionNumber,
		Version: r.Version,
	}
}

type accessionItem struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type accessionsDoc struct {
	Accessions []accessionItem `json:"accessions"`
}

func (a accessionItem) toAccession() citation.Accession {
	return citation.Accession{Type: a.Type, ID: a.ID}
}
