package pipeline

import (
	"encoding/xml"
	"io"
	"strings"

	apperrors "github.com/brankow/citation-extraction/pkg/errors"
)

// Paragraph is one numbered <p> element of a patent document.
type Paragraph struct {
	// Num is the paragraph's num attribute, e.g. "0007".
	Num string

	// Text is the paragraph content with all markup stripped.
	Text string

	// NplcitCount is the number of pre-tagged <nplcit> citations inside the
	// paragraph.  A nonzero count gates the paragraph even when no other
	// signal fires.
	NplcitCount int
}

// parseParagraphs streams the document and collects every <p> element that
// carries a num attribute.  Paragraphs without the attribute are skipped, as
// are <p> elements nested inside another paragraph (their text still counts
// toward the outer one).
func parseParagraphs(r io.Reader) ([]Paragraph, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []Paragraph
		current    *Paragraph
		text       strings.Builder
		depth      int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeDocumentParse, "input is not valid XML")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if current != nil {
				depth++
				if t.Name.Local == "nplcit" {
					current.NplcitCount++
				}
				continue
			}
			if t.Name.Local == "p" {
				if num := attrValue(t, "num"); num != "" {
					current = &Paragraph{Num: num}
					text.Reset()
					depth = 0
				}
			}
		case xml.EndElement:
			if current == nil {
				continue
			}
			if depth > 0 {
				depth--
				continue
			}
			if t.Name.Local == "p" {
				current.Text = strings.TrimSpace(text.String())
				paragraphs = append(paragraphs, *current)
				current = nil
			}
		case xml.CharData:
			if current != nil {
				text.Write(t)
			}
		}
	}

	if len(paragraphs) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeDocumentEmpty, "document contains no numbered paragraphs")
	}
	return paragraphs, nil
}

func attrValue(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
