package citation

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Catalog aggregates every citation extracted from one document and assigns
// the sequential ref-ncitNNNN identifiers.  Articles, accessions, and
// standards share a single counter so identifiers stay unique across kinds.
// Safe for concurrent use.
type Catalog struct {
	mu      sync.Mutex
	next    int
	seen    map[refKey]struct{}
	entries []Entry
}

// refKey identifies a reference for catalog-wide deduplication.
type refKey struct {
	author    string
	title     string
	publisher string
	date      string
}

func keyOf(ref Reference) refKey {
	lower := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return refKey{
		author:    lower(ref.AuthorString()),
		title:     lower(ref.Title),
		publisher: lower(ref.Publisher),
		date:      lower(ref.PublicationDate),
	}
}

// EntryKind labels what a catalog entry holds.
type EntryKind string

const (
	KindArticle  EntryKind = "article"
	KindOnline   EntryKind = "online"
	KindStandard EntryKind = "standard"
)

// Entry is one catalog line in allocation order.  Exactly one of Reference,
// Accession, or Standard is populated, per Kind.
type Entry struct {
	ID         string
	CrossrefID string
	Kind       EntryKind
	Paragraph  string
	Reference  Reference
	Accession  Accession
	Standard   Standard
}

func NewCatalog() *Catalog {
	return &Catalog{next: 1, seen: make(map[refKey]struct{})}
}

func (c *Catalog) allocate() (id, crossref string) {
	id = fmt.Sprintf("ref-ncit%04d", c.next)
	crossref = fmt.Sprintf("ncit%04d", c.next)
	c.next++
	return id, crossref
}

// AddReference appends one literature reference.  A reference whose author,
// title, publisher, and date all match an earlier entry is a duplicate and
// is not added; ok reports whether the entry went in.
func (c *Catalog) AddReference(ref Reference, paragraph string) (id string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := keyOf(ref)
	if _, dup := c.seen[key]; dup {
		return "", false
	}
	c.seen[key] = struct{}{}

	id, crossref := c.allocate()
	c.entries = append(c.entries, Entry{
		ID:         id,
		CrossrefID: crossref,
		Kind:       KindArticle,
		Paragraph:  paragraph,
		Reference:  ref,
	})
	return id, true
}

// AddAccession appends one database-identifier citation.
func (c *Catalog) AddAccession(acc Accession, paragraph string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, crossref := c.allocate()
	c.entries = append(c.entries, Entry{
		ID:         id,
		CrossrefID: crossref,
		Kind:       KindOnline,
		Paragraph:  paragraph,
		Accession:  acc,
	})
	return id
}

// AddStandard appends one technical-standard citation.
func (c *Catalog) AddStandard(std Standard, paragraph string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, crossref := c.allocate()
	c.entries = append(c.entries, Entry{
		ID:         id,
		CrossrefID: crossref,
		Kind:       KindStandard,
		Paragraph:  paragraph,
		Standard:   std,
	})
	return id
}

// Entries returns the catalog lines in identifier order.
func (c *Catalog) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Counts returns the number of entries per kind.
func (c *Catalog) Counts() (articles, accessions, standards int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		switch e.Kind {
		case KindArticle:
			articles++
		case KindOnline:
			accessions++
		case KindStandard:
			standards++
		}
	}
	return articles, accessions, standards
}

// Len returns the total number of entries.
func (c *Catalog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ---------------------------------------------------------------------------
// XML serialization
// ---------------------------------------------------------------------------

type catalogXML struct {
	XMLName   xml.Name    `xml:"ep-citation-catalog"`
	Citations []nplcitXML `xml:"nplcit"`
}

type nplcitXML struct {
	ID         string       `xml:"id,attr"`
	NplType    string       `xml:"npl-type,attr"`
	CrossrefID string       `xml:"crossrefid,attr"`
	Article    *articleXML  `xml:"article,omitempty"`
	Online     *onlineXML   `xml:"online,omitempty"`
	Standard   *standardXML `xml:"standard,omitempty"`
}

type articleXML struct {
	Authors  []authorXML  `xml:"author"`
	Title    string       `xml:"atl"`
	Serial   serialXML    `xml:"serial"`
	Location *locationXML `xml:"location,omitempty"`
	URL      string       `xml:"url,omitempty"`
}

type authorXML struct {
	Name string `xml:"name"`
}

type serialXML struct {
	Title   string     `xml:"sertitle"`
	Pubdate pubdateXML `xml:"pubdate"`
	Volume  string     `xml:"vid,omitempty"`
}

type pubdateXML struct {
	SDate string `xml:"sdate"`
	EDate string `xml:"edate"`
}

type locationXML struct {
	Pages pagesXML `xml:"pp"`
}

type pagesXML struct {
	First string `xml:"ppf"`
	Last  string `xml:"ppl"`
}

type onlineXML struct {
	Title string `xml:"online-title"`
	AbsNo string `xml:"absno"`
	Avail string `xml:"avail"`
}

type standardXML struct {
	Title   string `xml:"std-title"`
	Body    string `xml:"std-body"`
	Number  string `xml:"std-number"`
	Version string `xml:"std-version,omitempty"`
}

func (e Entry) toXML() nplcitXML {
	out := nplcitXML{ID: e.ID, CrossrefID: e.CrossrefID}
	switch e.Kind {
	case KindArticle:
		out.NplType = "s"
		out.Article = articleToXML(e.Reference)
	case KindOnline:
		out.NplType = "e"
		out.Online = &onlineXML{Title: e.Accession.Type, AbsNo: e.Accession.ID}
	case KindStandard:
		out.NplType = "t"
		out.Standard = &standardXML{
			Title:   e.Standard.Title,
			Body:    e.Standard.Body,
			Number:  e.Standard.Number,
			Version: e.Standard.Version,
		}
	}
	return out
}

func articleToXML(ref Reference) *articleXML {
	a := &articleXML{
		Title: ref.Title,
		URL:   ref.URL,
		Serial: serialXML{
			Title:   ref.Publisher,
			Volume:  ref.Volume,
			Pubdate: pubdateXML{SDate: ref.PublicationDate},
		},
	}
	for _, name := range ref.Authors {
		a.Authors = append(a.Authors, authorXML{Name: name})
	}
	if ref.Pages != "" {
		pp := pagesXML{First: ref.Pages}
		if first, last, found := strings.Cut(ref.Pages, "-"); found {
			pp.First = strings.TrimSpace(first)
			pp.Last = strings.TrimSpace(last)
		}
		a.Location = &locationXML{Pages: pp}
	}
	return a
}

// XML returns the serialized catalog as a string.
func (c *Catalog) XML() (string, error) {
	var sb strings.Builder
	if err := c.WriteXML(&sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteXML serializes the catalog to the target schema with an XML
// declaration and 4-space indentation.
func (c *Catalog) WriteXML(w io.Writer) error {
	doc := catalogXML{}
	for _, e := range c.Entries() {
		doc.Citations = append(doc.Citations, e.toXML())
	}
	data, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal citation catalog: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
