package citation

import (
	"bytes"
	"strings"
	"testing"
)

func TestCatalog_SequentialIDsAcrossKinds(t *testing.T) {
	c := NewCatalog()

	id1, ok := c.AddReference(Reference{Title: "First article", Authors: []string{"A"}}, "0007")
	if !ok || id1 != "ref-ncit0001" {
		t.Fatalf("AddReference = (%q, %v)", id1, ok)
	}
	id2 := c.AddAccession(Accession{Type: "GenBank", ID: "AB123456"}, "0008")
	if id2 != "ref-ncit0002" {
		t.Fatalf("AddAccession = %q", id2)
	}
	id3 := c.AddStandard(Standard{Body: "3GPP", Number: "TS 23.501"}, "0009")
	if id3 != "ref-ncit0003" {
		t.Fatalf("AddStandard = %q", id3)
	}

	articles, accessions, standards := c.Counts()
	if articles != 1 || accessions != 1 || standards != 1 {
		t.Errorf("Counts = (%d, %d, %d)", articles, accessions, standards)
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d", c.Len())
	}
}

func TestCatalog_DeduplicatesReferences(t *testing.T) {
	c := NewCatalog()
	ref := Reference{
		Title:           "Ion transport",
		Authors:         []string{"Smith", "Jones"},
		Publisher:       "Journal of Biology",
		PublicationDate: "00062015",
	}
	if _, ok := c.AddReference(ref, "0001"); !ok {
		t.Fatal("first add rejected")
	}
	// Same key fields with different case and padding is the same citation.
	dup := ref
	dup.Title = "  ION TRANSPORT "
	dup.Volume = "12"
	if id, ok := c.AddReference(dup, "0002"); ok {
		t.Errorf("duplicate accepted as %q", id)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}

	other := ref
	other.PublicationDate = "00062016"
	if _, ok := c.AddReference(other, "0003"); !ok {
		t.Error("reference with different date rejected")
	}
}

func TestCatalog_WriteXML(t *testing.T) {
	c := NewCatalog()
	c.AddReference(Reference{
		Title:           "Ion transport",
		Authors:         []string{"Smith", "Jones"},
		Publisher:       "Journal of Biology",
		PublicationDate: "00062015",
		Volume:          "42",
		Pages:           "3790-3799",
		URL:             "https://doi.org/10.1016/j.cell.2015.01.002",
	}, "0007")
	c.AddAccession(Accession{Type: "GenBank", ID: "AB123456"}, "0008")
	c.AddStandard(Standard{
		Title:   "System architecture for the 5G System",
		Body:    "3GPP",
		Number:  "TS 23.501",
		Version: "16.4.0",
	}, "0009")

	var buf bytes.Buffer
	if err := c.WriteXML(&buf); err != nil {
		t.Fatalf("WriteXML: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<ep-citation-catalog>`,
		`<nplcit id="ref-ncit0001" npl-type="s" crossrefid="ncit0001">`,
		`<name>Smith</name>`,
		`<name>Jones</name>`,
		`<atl>Ion transport</atl>`,
		`<sertitle>Journal of Biology</sertitle>`,
		`<sdate>00062015</sdate>`,
		`<edate></edate>`,
		`<vid>42</vid>`,
		`<ppf>3790</ppf>`,
		`<ppl>3799</ppl>`,
		`<url>https://doi.org/10.1016/j.cell.2015.01.002</url>`,
		`<nplcit id="ref-ncit0002" npl-type="e" crossrefid="ncit0002">`,
		`<online-title>GenBank</online-title>`,
		`<absno>AB123456</absno>`,
		`<avail></avail>`,
		`<nplcit id="ref-ncit0003" npl-type="t" crossrefid="ncit0003">`,
		`<std-title>System architecture for the 5G System</std-title>`,
		`<std-body>3GPP</std-body>`,
		`<std-number>TS 23.501</std-number>`,
		`<std-version>16.4.0</std-version>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s\n%s", want, out)
		}
	}
}

func TestCatalog_XMLString(t *testing.T) {
	c := NewCatalog()
	c.AddAccession(Accession{Type: "PDB", ID: "1ABC"}, "0001")

	out, err := c.XML()
	if err != nil {
		t.Fatalf("XML: %v", err)
	}
	var buf bytes.Buffer
	if err := c.WriteXML(&buf); err != nil {
		t.Fatalf("WriteXML: %v", err)
	}
	if out != buf.String() {
		t.Error("XML and WriteXML disagree")
	}
}

func TestCatalog_EmptyOptionalElementsOmitted(t *testing.T) {
	c := NewCatalog()
	c.AddReference(Reference{Title: "Bare minimum", Authors: []string{"A"}}, "0001")

	var buf bytes.Buffer
	if err := c.WriteXML(&buf); err != nil {
		t.Fatalf("WriteXML: %v", err)
	}
	out := buf.String()
	for _, absent := range []string{"<vid>", "<location>", "<url>"} {
		if strings.Contains(out, absent) {
			t.Errorf("output should not contain %s\n%s", absent, out)
		}
	}
	// The always-present skeleton elements remain even when empty.
	for _, want := range []string{"<sertitle></sertitle>", "<sdate></sdate>", "<edate></edate>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s\n%s", want, out)
		}
	}
}
