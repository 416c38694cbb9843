package citation

import (
	"reflect"
	"testing"

	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/logging"
	"github.com/brankow/citation-extraction/internal/textproc/dateextract"
)

func newCorrector() *Corrector {
	dates := dateextract.New(dateextract.Config{MinYear: 1900, MaxYear: 2026})
	return NewCorrector(dates, logging.NewNopLogger())
}

func TestCorrect_TitlePublisherSwap(t *testing.T) {
	c := newCorrector()
	got, fired := c.Correct(Reference{Title: "Nature"})
	if got.Title != "" || got.Publisher != "Nature" {
		t.Errorf("got title=%q publisher=%q, want swap", got.Title, got.Publisher)
	}
	if !firedContains(fired, "title_publisher_swap") {
		t.Errorf("fired = %v, want title_publisher_swap", fired)
	}
}

func TestCorrect_SwapSkipsLongTitles(t *testing.T) {
	c := newCorrector()
	in := Reference{Title: "The structure of the potassium channel"}
	got, _ := c.Correct(in)
	if got.Title != in.Title {
		t.Errorf("long title was moved: %+v", got)
	}
}

func TestCorrect_SwapSkipsWhenPublisherSet(t *testing.T) {
	c := newCorrector()
	got, _ := c.Correct(Reference{Title: "Nature", Publisher: "Springer"})
	if got.Title != "Nature" || got.Publisher != "Springer" {
		t.Errorf("swap fired despite publisher: %+v", got)
	}
}

func TestCorrect_DOIPrefixRepair(t *testing.T) {
	c := newCorrector()
	got, fired := c.Correct(Reference{URL: "doi:10.1002/mds.26125"})
	if got.URL != "https://doi.org/10.1002/mds.26125" {
		t.Errorf("url = %q", got.URL)
	}
	if !firedContains(fired, "doi_repair") {
		t.Errorf("fired = %v, want doi_repair", fired)
	}
}

func TestCorrect_BareDOICompletion(t *testing.T) {
	c := newCorrector()
	got, _ := c.Correct(Reference{URL: "10.1016/j.cell.2015.01.002"})
	if got.URL != "https://doi.org/10.1016/j.cell.2015.01.002" {
		t.Errorf("url = %q", got.URL)
	}
}

func TestCorrect_URLCleanup(t *testing.T) {
	c := newCorrector()
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.org/paper [accessed 2020]", "https://example.org/paper"},
		{"<https://example.org/paper>", "https://example.org/paper"},
		{"www.example.org/x|garbage", "www.example.org/x"},
		{"not a url at all", ""},
		{"https://example.org/ok", "https://example.org/ok"},
	}
	for _, tt := range tests {
		got, _ := c.Correct(Reference{URL: tt.in})
		if got.URL != tt.want {
			t.Errorf("Correct(url=%q).URL = %q, want %q", tt.in, got.URL, tt.want)
		}
	}
}

func TestCorrect_AuthorEchoedInTitle(t *testing.T) {
	c := newCorrector()
	got, fired := c.Correct(Reference{
		Title:   "Mohamed et al. study of kinases",
		Authors: []string{"Mohamed et al."},
	})
	if got.Title != "" {
		t.Errorf("title = %q, want cleared", got.Title)
	}
	if !firedContains(fired, "author_in_title") {
		t.Errorf("fired = %v, want author_in_title", fired)
	}
}

func TestCorrect_AuthorEchoRequiresSingleAuthor(t *testing.T) {
	c := newCorrector()
	in := Reference{
		Title:   "Smith and Jones on ion channels",
		Authors: []string{"Smith", "Jones"},
	}
	got, _ := c.Correct(in)
	if got.Title != in.Title {
		t.Errorf("title changed with two authors: %q", got.Title)
	}
}

func TestCorrect_DateStandardization(t *testing.T) {
	c := newCorrector()
	got, fired := c.Correct(Reference{Title: "A long enough title", PublicationDate: "15 January 2025"})
	if got.PublicationDate != "15012025" {
		t.Errorf("date = %q, want 15012025", got.PublicationDate)
	}
	if !firedContains(fired, "date_standardization") {
		t.Errorf("fired = %v, want date_standardization", fired)
	}
}

func TestCorrect_UnparseableDateLeftAlone(t *testing.T) {
	c := newCorrector()
	got, fired := c.Correct(Reference{Title: "A long enough title", PublicationDate: "4th Edition"})
	if got.PublicationDate != "4th Edition" {
		t.Errorf("date = %q, want unchanged", got.PublicationDate)
	}
	if firedContains(fired, "date_standardization") {
		t.Errorf("date heuristic should not report a change")
	}
}

func TestCorrect_ShortFieldsCleared(t *testing.T) {
	c := newCorrector()
	got, _ := c.Correct(Reference{Title: "ab", Publisher: "xy", Authors: []string{"Someone"}})
	if got.Title != "" || got.Publisher != "" {
		t.Errorf("short fields survived: title=%q publisher=%q", got.Title, got.Publisher)
	}
}

func TestCorrect_Idempotent(t *testing.T) {
	c := newCorrector()
	inputs := []Reference{
		{Title: "Nature"},
		{URL: "doi:10.1002/mds.26125"},
		{Title: "Mohamed et al. review", Authors: []string{"Mohamed et al."}},
		{Title: "A proper article title", PublicationDate: "June 2017, Revision 3", Publisher: "Journal of Testing"},
		{Title: "ab", Publisher: "xy"},
		{URL: "https://example.org/paper [accessed]"},
	}
	for _, in := range inputs {
		once, _ := c.Correct(in)
		twice, fired := c.Correct(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("not idempotent for %+v:\nonce  %+v\ntwice %+v", in, once, twice)
		}
		if len(fired) != 0 {
			t.Errorf("second pass fired %v for %+v", fired, in)
		}
	}
}

func TestCorrect_NoChangeReportsNothing(t *testing.T) {
	c := newCorrector()
	in := Reference{
		Title:           "A proper article title",
		Authors:         []string{"A. Researcher"},
		Publisher:       "Journal of Testing",
		PublicationDate: "15012025",
		URL:             "https://example.org/ok",
	}
	got, fired := c.Correct(in)
	if len(fired) != 0 {
		t.Errorf("fired = %v, want none", fired)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("record changed: %+v", got)
	}
}

func firedContains(fired []string, name string) bool {
	for _, f := range fired {
		if f == name {
			return true
		}
	}
	return false
}
