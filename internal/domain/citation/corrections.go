package citation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/brankow/citation-extraction/internal/infrastructure/monitoring/logging"
	"github.com/brankow/citation-extraction/internal/textproc/dateextract"
)

// A Heuristic is one corrective transform over a reference record.  Apply
// returns the possibly-modified record and whether it changed anything.
// Heuristics are pure; composition order is fixed by the Corrector.
type Heuristic struct {
	Name  string
	Apply func(Reference) (Reference, bool)
}

// journalIndicators are words that open journal names far more often than
// article titles.
var journalIndicators = []string{"the", "j.", "journal", "nature", "science", "biochemistry"}

// minFieldLength is the shortest publisher or title kept as meaningful.
const minFieldLength = 4

var (
	reURLStart = regexp.MustCompile(`(?i)^(?:https?://|ftps?://|www\.|[a-z0-9][a-z0-9.-]*\.[a-z]{2,}/)`)
	urlCutset  = " \"'<>{}|\\^~[]"
)

// ---------------------------------------------------------------------------
// Heuristics
// ---------------------------------------------------------------------------

// swapTitlePublisher moves a short, journal-shaped title into the empty
// publisher field.
func swapTitlePublisher(ref Reference) (Reference, bool) {
	words := len(strings.Fields(ref.Title))
	if words == 0 || words >= 4 || ref.Publisher != "" {
		return ref, false
	}
	lower := strings.ToLower(ref.Title)
	for _, indicator := range journalIndicators {
		if strings.HasPrefix(lower, indicator) {
			ref.Publisher = ref.Title
			ref.Title = ""
			return ref, true
		}
	}
	return ref, false
}

// repairDOI rewrites "doi:10.x" prefixes and bare "10.x" DOIs as proper
// doi.org URLs.
func repairDOI(ref Reference) (Reference, bool) {
	url := ref.URL
	if url == "" {
		return ref, false
	}
	switch {
	case strings.HasPrefix(strings.ToLower(url), "doi:"):
		ref.URL = "https://doi.org/" + strings.TrimSpace(url[4:])
		return ref, true
	case strings.HasPrefix(url, "10.") && !strings.HasPrefix(strings.ToLower(url), "http"):
		ref.URL = "https://doi.org/" + url
		return ref, true
	}
	return ref, false
}

// cleanURL splits a malformed url on characters that cannot appear in one
// and keeps the first fragment that still looks like a URL.  A url with no
// such fragment is dropped.
func cleanURL(ref Reference) (Reference, bool) {
	if ref.URL == "" {
		return ref, false
	}
	fragments := strings.FieldsFunc(ref.URL, func(r rune) bool {
		return strings.ContainsRune(urlCutset, r)
	})
	for _, f := range fragments {
		if len(f) >= 5 && strings.Contains(f, ".") && reURLStart.MatchString(f) {
			changed := f != ref.URL
			ref.URL = f
			return ref, changed
		}
	}
	ref.URL = ""
	return ref, true
}

// clearEchoedAuthorTitle empties the title when the single author's name was
// echoed into it.
func clearEchoedAuthorTitle(ref Reference) (Reference, bool) {
	if len(ref.Authors) != 1 || ref.Title == "" {
		return ref, false
	}
	author := strings.ToLower(strings.TrimSpace(ref.Authors[0]))
	if utf8.RuneCountInString(author) < 2 {
		return ref, false
	}
	if strings.Contains(strings.ToLower(ref.Title), author) {
		ref.Title = ""
		return ref, true
	}
	return ref, false
}

// clearShortPublisher drops publisher values too short to be a name.
func clearShortPublisher(ref Reference) (Reference, bool) {
	if ref.Publisher != "" && utf8.RuneCountInString(ref.Publisher) < minFieldLength {
		ref.Publisher = ""
		return ref, true
	}
	return ref, false
}

// clearShortTitle drops title values too short to be a title.
func clearShortTitle(ref Reference) (Reference, bool) {
	if ref.Title != "" && utf8.RuneCountInString(ref.Title) < minFieldLength {
		ref.Title = ""
		return ref, true
	}
	return ref, false
}

// ---------------------------------------------------------------------------
// Corrector
// ---------------------------------------------------------------------------

// Corrector runs the heuristic pipeline over one record.  Safe for
// concurrent use; records are independent.
type Corrector struct {
	heuristics []Heuristic
	log        logging.Logger
}

// NewCorrector wires the default heuristic order.  Date standardization
// delegates to the given extractor.
func NewCorrector(dates *dateextract.Extractor, log logging.Logger) *Corrector {
	if log == nil {
		log = logging.NewNopLogger()
	}
	standardizeDate := func(ref Reference) (Reference, bool) {
		if ref.PublicationDate == "" {
			return ref, false
		}
		extracted := dates.Extract(ref.PublicationDate)
		if extracted == dateextract.Sentinel || extracted == ref.PublicationDate {
			return ref, false
		}
		ref.PublicationDate = extracted
		return ref, true
	}
	return &Corrector{
		log: log,
		heuristics: []Heuristic{
			{Name: "title_publisher_swap", Apply: swapTitlePublisher},
			{Name: "doi_repair", Apply: repairDOI},
			{Name: "url_cleanup", Apply: cleanURL},
			{Name: "author_in_title", Apply: clearEchoedAuthorTitle},
			{Name: "date_standardization", Apply: standardizeDate},
			{Name: "short_publisher", Apply: clearShortPublisher},
			{Name: "short_title", Apply: clearShortTitle},
		},
	}
}

// Correct folds the record through every heuristic in order and returns the
// corrected record plus the names of the heuristics that fired.  It never
// fails; a heuristic that finds nothing to fix passes the record through.
func (c *Corrector) Correct(ref Reference) (Reference, []string) {
	ref = ref.normalized()
	var fired []string
	for _, h := range c.heuristics {
		next, changed := h.Apply(ref)
		if changed {
			fired = append(fired, h.Name)
			c.log.Debug("reference corrected", logging.String("heuristic", h.Name))
		}
		ref = next
	}
	if ref.PublicationDate != "" && !IsCanonicalDate(ref.PublicationDate) {
		c.log.Warn("publication date not parseable",
			logging.String("publication_date", ref.PublicationDate))
	}
	return ref, fired
}
