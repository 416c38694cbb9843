package pipeline

import (
	"strings"
	"testing"

	apperrors "github.com/brankow/citation-extraction/pkg/errors"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<ep-patent-document>
  <description>
    <p num="0001">The invention relates to ion <b>transport</b> channels.</p>
    <p num="0002">See Smith et al., Journal of Biology, 2015, <nplcit id="ref-ncit0001"><text>Smith 2015</text></nplcit> for details.</p>
    <p>An unnumbered paragraph that must be skipped.</p>
    <p num="0003"></p>
  </description>
</ep-patent-document>`

func TestParseParagraphs(t *testing.T) {
	paras, err := parseParagraphs(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("parseParagraphs: %v", err)
	}
	if len(paras) != 3 {
		t.Fatalf("got %d paragraphs, want 3", len(paras))
	}

	if paras[0].Num != "0001" {
		t.Errorf("num = %q", paras[0].Num)
	}
	if paras[0].Text != "The invention relates to ion transport channels." {
		t.Errorf("markup not stripped: %q", paras[0].Text)
	}
	if paras[0].NplcitCount != 0 {
		t.Errorf("NplcitCount = %d, want 0", paras[0].NplcitCount)
	}

	if paras[1].NplcitCount != 1 {
		t.Errorf("NplcitCount = %d, want 1", paras[1].NplcitCount)
	}
	if !strings.Contains(paras[1].Text, "Smith 2015") {
		t.Errorf("nested citation text lost: %q", paras[1].Text)
	}

	if paras[2].Num != "0003" || paras[2].Text != "" {
		t.Errorf("empty paragraph = %+v", paras[2])
	}
}

func TestParseParagraphs_InvalidXML(t *testing.T) {
	_, err := parseParagraphs(strings.NewReader("<description><p num=\"1\">unclosed"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeDocumentParse) {
		t.Errorf("code = %v", apperrors.GetCode(err))
	}
}

func TestParseParagraphs_NoNumberedParagraphs(t *testing.T) {
	_, err := parseParagraphs(strings.NewReader("<description><p>text</p></description>"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeDocumentEmpty) {
		t.Errorf("code = %v", apperrors.GetCode(err))
	}
}
