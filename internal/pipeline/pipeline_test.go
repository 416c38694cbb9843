package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/brankow/citation-extraction/internal/domain/citation"
	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/logging"
	"github.com/brankow/citation-extraction/internal/textproc/dateextract"
	"github.com/brankow/citation-extraction/internal/textproc/redact"
	"github.com/brankow/citation-extraction/internal/textproc/splitter"
)

// fakeExtractor records calls and replays canned results.  Safe for the
// pipeline's concurrent chunk workers.
type fakeExtractor struct {
	mu sync.Mutex

	refTexts  []string
	accTexts  []string
	stdTexts  []string
	g3ppLists [][]string
	ieeeLists [][]string

	refs    []citation.Reference
	accs    []citation.Accession
	stds    []citation.Standard
	refsErr error
}

func (f *fakeExtractor) ExtractReferences(_ context.Context, text string) ([]citation.Reference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refTexts = append(f.refTexts, text)
	if f.refsErr != nil {
		return nil, f.refsErr
	}
	return f.refs, nil
}

func (f *fakeExtractor) ExtractAccessions(_ context.Context, text string) ([]citation.Accession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accTexts = append(f.accTexts, text)
	return f.accs, nil
}

func (f *fakeExtractor) ExtractStandards(_ context.Context, text string, g3pp, ieee []string) ([]citation.Standard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stdTexts = append(f.stdTexts, text)
	f.g3ppLists = append(f.g3ppLists, g3pp)
	f.ieeeLists = append(f.ieeeLists, ieee)
	return f.stds, nil
}

func newTestProcessor(f *fakeExtractor) *Processor {
	dates := dateextract.New(dateextract.Config{MinYear: 1900, MaxYear: 2026})
	return NewProcessor(
		splitter.New(splitter.Config{Threshold: 1000, MaxDepth: 32}),
		redact.New(redact.Config{MaxTokenLength: 20}),
		citation.NewCorrector(dates, logging.NewNopLogger()),
		f,
	)
}

func doc(paragraphs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0"?><description>`)
	for i, p := range paragraphs {
		sb.WriteString(`<p num="000`)
		sb.WriteByte(byte('1' + i))
		sb.WriteString(`">`)
		sb.WriteString(p)
		sb.WriteString(`</p>`)
	}
	sb.WriteString(`</description>`)
	return sb.String()
}

func TestProcessDocument_ReferencePath(t *testing.T) {
	f := &fakeExtractor{
		refs: []citation.Reference{{
			Title:           "Ion transport in membranes",
			Authors:         []string{"Smith"},
			Publisher:       "Journal of Biology",
			PublicationDate: "15 January 2025",
		}},
	}
	p := newTestProcessor(f)

	res, err := p.ProcessDocument(context.Background(),
		strings.NewReader(doc("Smith et al. describe ion transport, published in 2015.")))
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if res.Paragraphs != 1 || res.Gated != 1 {
		t.Errorf("paragraphs=%d gated=%d", res.Paragraphs, res.Gated)
	}
	if len(f.refTexts) != 1 {
		t.Fatalf("reference extraction called %d times", len(f.refTexts))
	}
	if len(f.accTexts) != 0 || len(f.stdTexts) != 0 {
		t.Errorf("unexpected accession/standards calls: %d/%d", len(f.accTexts), len(f.stdTexts))
	}

	entries := res.Catalog.Entries()
	if len(entries) != 1 {
		t.Fatalf("catalog has %d entries", len(entries))
	}
	e := entries[0]
	if e.Kind != citation.KindArticle || e.Paragraph != "0001" {
		t.Errorf("entry = %+v", e)
	}
	// The date heuristic canonicalizes on the way into the catalog.
	if e.Reference.PublicationDate != "15012025" {
		t.Errorf("date = %q", e.Reference.PublicationDate)
	}
}

func TestProcessDocument_FiltersReferences(t *testing.T) {
	f := &fakeExtractor{
		refs: []citation.Reference{{PublicationDate: "2015"}},
	}
	p := newTestProcessor(f)

	res, err := p.ProcessDocument(context.Background(),
		strings.NewReader(doc("An experiment performed in 2015.")))
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if res.Catalog.Len() != 0 {
		t.Errorf("date-only reference must be filtered, catalog has %d entries", res.Catalog.Len())
	}
}

func TestProcessDocument_AccessionPath(t *testing.T) {
	f := &fakeExtractor{
		accs: []citation.Accession{
			{Type: "GenBank", ID: "AB123456"},
			{Type: "none", ID: "X"},
			{Type: "PDB", ID: ""},
		},
	}
	p := newTestProcessor(f)

	longToken := strings.Repeat("C6H12O6-", 5) // 40 chars, redacted as a formula
	res, err := p.ProcessDocument(context.Background(),
		strings.NewReader(doc("The sequence was deposited in Genbank as "+longToken+" under AB123456.")))
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}

	if len(f.accTexts) != 1 {
		t.Fatalf("accession extraction called %d times", len(f.accTexts))
	}
	if !strings.Contains(f.accTexts[0], "FORMULA") || strings.Contains(f.accTexts[0], longToken) {
		t.Errorf("redaction not applied before extraction: %q", f.accTexts[0])
	}
	if len(f.refTexts) != 0 {
		t.Errorf("reference extraction must not run without a year or DOI")
	}

	articles, accessions, standards := res.Catalog.Counts()
	if articles != 0 || accessions != 1 || standards != 0 {
		t.Errorf("counts = (%d, %d, %d), want (0, 1, 0)", articles, accessions, standards)
	}
}

func TestProcessDocument_StandardsPath(t *testing.T) {
	f := &fakeExtractor{
		stds: []citation.Standard{{
			Title:  "System architecture for the 5G System",
			Body:   "3GPP",
			Number: "TS 23.501",
		}},
	}
	p := newTestProcessor(f)

	res, err := p.ProcessDocument(context.Background(),
		strings.NewReader(doc("The procedure follows 3GPP TS 23.501.")))
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if len(f.stdTexts) != 1 {
		t.Fatalf("standards extraction called %d times", len(f.stdTexts))
	}
	if len(f.g3ppLists[0]) != 1 || f.g3ppLists[0][0] != "TS 23.501" {
		t.Errorf("3GPP candidates = %v", f.g3ppLists[0])
	}
	// Standards enter the catalog without the reference skip filters.
	_, _, standards := res.Catalog.Counts()
	if standards != 1 {
		t.Errorf("standards = %d, want 1", standards)
	}
}

func TestProcessDocument_UngatedParagraphSkipsLLM(t *testing.T) {
	f := &fakeExtractor{}
	p := newTestProcessor(f)

	res, err := p.ProcessDocument(context.Background(),
		strings.NewReader(doc("A paragraph about general laboratory equipment.")))
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if res.Gated != 0 {
		t.Errorf("gated = %d, want 0", res.Gated)
	}
	if len(f.refTexts)+len(f.accTexts)+len(f.stdTexts) != 0 {
		t.Error("LLM must not be called for an ungated paragraph")
	}
}

func TestProcessDocument_ExtractionFailureDoesNotAbort(t *testing.T) {
	f := &fakeExtractor{refsErr: errors.New("model unavailable")}
	p := newTestProcessor(f)

	res, err := p.ProcessDocument(context.Background(),
		strings.NewReader(doc(
			"First study published in 2015.",
			"Second paragraph, deposited in Genbank under AB123456.",
		)))
	if err != nil {
		t.Fatalf("a failed extraction must not abort the document: %v", err)
	}
	if res.Gated != 2 {
		t.Errorf("gated = %d, want 2", res.Gated)
	}
	if len(f.accTexts) != 1 {
		t.Errorf("later paragraphs must still be processed")
	}
}
