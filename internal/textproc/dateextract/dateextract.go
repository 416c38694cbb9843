// Package dateextract parses free-text publication-date fragments into the
// canonical DDMMYYYY form used by the citation catalog.  Input is noisy by
// nature: citation page ranges, version editions, issue numbers, and dates in
// English, French, and German all flow through here.  Extraction is an
// ordered cascade of patterns; the first structured pattern that yields a
// year in the valid range wins, and a whole-text year scan serves as the
// final fallback.
package dateextract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Sentinel is returned whenever no valid date can be found.
const Sentinel = "00000000"

// ---------------------------------------------------------------------------
// Month name tables (English, French, German)
// ---------------------------------------------------------------------------

// monthNames maps lowercased month names and common abbreviations to their
// month number.  French and German entries include diacritics; callers must
// not pre-strip them.
var monthNames = map[string]int{
	// English
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4,
	"jun": 6, "jul": 7, "aug": 8,
	"sep": 9, "oct": 10, "nov": 11, "dec": 12,
	// French
	"janvier": 1, "février": 2, "mars": 3, "avril": 4,
	"mai": 5, "juin": 6, "juillet": 7, "août": 8,
	"septembre": 9, "octobre": 10, "novembre": 11, "décembre": 12,
	"janv": 1, "févr": 2, "avr": 4, "juil": 7,
	"sept": 9, "déc": 12,
	// German
	"januar": 1, "februar": 2, "märz": 3,
	"juni": 6, "juli": 7,
	"oktober": 10, "dezember": 12,
	"mär": 3, "okt": 10, "dez": 12,
}

// monthAlternation builds the regex alternation for month names, longest
// first so that "september" is preferred over "sep" at the same position.
func monthAlternation() string {
	names := make([]string, 0, len(monthNames))
	for name := range monthNames {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	for i, name := range names {
		names[i] = regexp.QuoteMeta(name)
	}
	return strings.Join(names, "|")
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config bounds the valid year range.
type Config struct {
	MinYear int
	// MaxYear of 0 means the current calendar year.
	MaxYear int
}

// DefaultConfig returns the production bounds.
func DefaultConfig() Config {
	return Config{MinYear: 1900, MaxYear: 0}
}

// ---------------------------------------------------------------------------
// Extractor
// ---------------------------------------------------------------------------

// Extractor is a pure, reusable date parser.  It holds only compiled
// patterns and the year bounds, so a single instance is safe for concurrent
// use from any number of goroutines.
type Extractor struct {
	minYear int
	maxYear int

	reReject            *regexp.Regexp
	reDayMonthYear      *regexp.Regexp
	reMonthDayYear      *regexp.Regexp
	reYearMonthDayRange *regexp.Regexp
	reYearMonthDay      *regexp.Regexp
	reMonthRangeYear    *regexp.Regexp
	reYearDotMonthIssue *regexp.Regexp
	reYearMonth         *regexp.Regexp
	reMonthYear         *regexp.Regexp
	reNumericYMD        *regexp.Regexp
	reNumericDMY        *regexp.Regexp
	reYearShortMonth    *regexp.Regexp
	reYearToken         *regexp.Regexp
}

// New compiles the pattern cascade for the given year bounds.
func New(cfg Config) *Extractor {
	minYear := cfg.MinYear
	if minYear == 0 {
		minYear = 1900
	}
	maxYear := cfg.MaxYear
	if maxYear == 0 {
		maxYear = time.Now().Year()
	}

	months := monthAlternation()

	return &Extractor{
		minYear: minYear,
		maxYear: maxYear,

		// Publication/application numbers like "2010-0024077" look like a
		// year with a dash suffix; the leading zero marks them as numbers.
		reReject: regexp.MustCompile(`\b\d{4}-0\d{3,}\b`),

		// "24 Okt. 2013", "20. Juni 2001", "1st. February 2025",
		// "15th of March 2025", "16 juin 2007".
		reDayMonthYear: regexp.MustCompile(
			`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\.?[\s,.\-]*(?:of\s+)?(` + months + `)\.?,?[\s,.\-]*(\d{4})\b`),

		// "November 10, 2022", "January 1st., 2025", "September, 30, 2021".
		// Group 3 captures an explicit day range ("December 17 to 18, 2022",
		// "September 21-22, 1999"); a range resolves to the year alone.  The
		// year must not run into more digits, but glued letters are fine
		// ("Nov. 30th, 2022FJT"), which rules out a plain \b.
		reMonthDayYear: regexp.MustCompile(
			`(?i)\b(` + months + `)\.?,?\s*(\d{1,2})(?:st|nd|rd|th)?(\s*(?:to|[-–])\s*\d{1,2})?\.?,?\s*(\d{4})(?:[^0-9]|$)`),

		// "2012 Mar 31-Apr 4": first day of the range only.
		reYearMonthDayRange: regexp.MustCompile(
			`(?i)\b(\d{4})[,;]?\s+(` + months + `)\.?\s*(\d{1,2})\s*[-–]\s*(?:(?:` + months + `)\.?\s*)?\d{1,2}\b`),

		// "2012 Dec 21".  A day candidate running straight into "(" is a
		// volume before an issue number ("2013, May 10(5)"), so the day must
		// end at something other than a digit or an opening parenthesis.
		reYearMonthDay: regexp.MustCompile(
			`(?i)\b(\d{4})[,;]?\s+(` + months + `)\.?\s+(\d{1,2})(?:[^(0-9]|$)`),

		// "Mar-Apr 2016", "May-June 2003": a month range cannot resolve to
		// one month, so only the year survives.
		reMonthRangeYear: regexp.MustCompile(
			`(?i)\b(` + months + `)\.?\s*[-–]\s*(` + months + `)\.?,?\s+(\d{4})\b`),

		// "2011.01.086": year.month followed by an issue number.
		reYearDotMonthIssue: regexp.MustCompile(`\b(\d{4})\.(\d{1,2})\.(\d{3,})\b`),

		// "2015 Mar", "2013, May".
		reYearMonth: regexp.MustCompile(`(?i)\b(\d{4})[,;]?\s+(` + months + `)\b`),

		// "Mai 2008", "Founded in October 2023".
		reMonthYear: regexp.MustCompile(`(?i)\b(` + months + `)\.?,?\s+(\d{4})\b`),

		// "2022.11.08", "2009.3.31".
		reNumericYMD: regexp.MustCompile(`\b(\d{4})[.\-](\d{1,2})[.\-](\d{1,2})\b`),

		// "25.12.2024", "13-1-2025", "30.01.2018".
		reNumericDMY: regexp.MustCompile(`\b(\d{1,2})[.\-](\d{1,2})[.\-](\d{4})\b`),

		// "2024-6", "2018-6": year-month with a short numeric suffix.  The
		// trailing boundary keeps filing numbers like "2005-343699" out.
		reYearShortMonth: regexp.MustCompile(`\b(\d{4})[-.](\d{1,2})\b`),

		reYearToken: regexp.MustCompile(`\d{4}`),
	}
}

// ---------------------------------------------------------------------------
// Extraction cascade
// ---------------------------------------------------------------------------

// Extract returns the best-guess publication date for text as exactly eight
// ASCII digits in DDMMYYYY order, with "00" for unknown day or month, or the
// "00000000" sentinel when no valid year can be found.  Extract is a pure
// function: the same input always yields the same output.
func (e *Extractor) Extract(text string) string {
	s := strings.TrimSpace(text)
	if s == "" || s == "N/A" {
		return Sentinel
	}

	// A year glued to a zero-padded number is an application number, not a
	// date.  Rejecting here keeps the year scan below from picking it up.
	if e.reReject.MatchString(s) {
		return Sentinel
	}

	if out, ok := e.tryDayMonthYear(s); ok {
		return out
	}
	if out, ok := e.tryMonthDayYear(s); ok {
		return out
	}
	if out, ok := e.tryYearMonthDay(s); ok {
		return out
	}
	if out, ok := e.tryMonthRangeYear(s); ok {
		return out
	}
	if out, ok := e.tryYearDotMonthIssue(s); ok {
		return out
	}
	if out, ok := e.tryYearMonthName(s); ok {
		return out
	}
	if out, ok := e.tryMonthNameYear(s); ok {
		return out
	}
	if out, ok := e.tryNumericTriple(s); ok {
		return out
	}
	if out, ok := e.tryYearShortMonth(s); ok {
		return out
	}

	// Last resort: scan the whole text for standalone 4-digit years and take
	// the latest one.  "Edition 2007, Issue 2015" resolves to 2015, and a
	// bare range like "2001-2007" resolves to 2007.
	if year, ok := e.scanMaxYear(s); ok {
		return format(0, 0, year)
	}

	return Sentinel
}

func (e *Extractor) tryDayMonthYear(s string) (string, bool) {
	m := e.reDayMonthYear.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year := atoi(m[3])
	if !e.yearValid(year) {
		return "", false
	}
	return format(atoi(m[1]), e.month(m[2]), year), true
}

func (e *Extractor) tryMonthDayYear(s string) (string, bool) {
	m := e.reMonthDayYear.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year := atoi(m[4])
	if !e.yearValid(year) {
		return "", false
	}
	if m[3] != "" {
		// Explicit day range: the year is certain, nothing else is.
		return format(0, 0, year), true
	}
	return format(atoi(m[2]), e.month(m[1]), year), true
}

func (e *Extractor) tryYearMonthDay(s string) (string, bool) {
	// The range form first, so "2012 Mar 31-Apr 4" takes the first day.
	if m := e.reYearMonthDayRange.FindStringSubmatch(s); m != nil {
		year := atoi(m[1])
		if e.yearValid(year) {
			return format(atoi(m[3]), e.month(m[2]), year), true
		}
	}
	m := e.reYearMonthDay.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year := atoi(m[1])
	if !e.yearValid(year) {
		return "", false
	}
	return format(atoi(m[3]), e.month(m[2]), year), true
}

func (e *Extractor) tryMonthRangeYear(s string) (string, bool) {
	m := e.reMonthRangeYear.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year := atoi(m[3])
	if !e.yearValid(year) {
		return "", false
	}
	return format(0, 0, year), true
}

func (e *Extractor) tryYearDotMonthIssue(s string) (string, bool) {
	m := e.reYearDotMonthIssue.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year, month := atoi(m[1]), atoi(m[2])
	if !e.yearValid(year) || month < 1 || month > 12 {
		return "", false
	}
	return format(0, month, year), true
}

func (e *Extractor) tryYearMonthName(s string) (string, bool) {
	m := e.reYearMonth.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year := atoi(m[1])
	if !e.yearValid(year) {
		return "", false
	}
	return format(0, e.month(m[2]), year), true
}

func (e *Extractor) tryMonthNameYear(s string) (string, bool) {
	m := e.reMonthYear.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year := atoi(m[2])
	if !e.yearValid(year) {
		return "", false
	}
	return format(0, e.month(m[1]), year), true
}

// tryNumericTriple handles fully numeric dates separated by dots or dashes.
// YYYY.MM.DD is tried first, then DD.MM.YYYY; ambiguous orderings prefer the
// day-first reading, and a triple where neither ordering is calendar-valid
// rejects the whole input so the year scan cannot misread it.
func (e *Extractor) tryNumericTriple(s string) (string, bool) {
	if m := e.reNumericYMD.FindStringSubmatch(s); m != nil {
		year := atoi(m[1])
		if e.yearValid(year) {
			month, day, ok := resolveDayMonth(atoi(m[3]), atoi(m[2]))
			if !ok {
				return Sentinel, true
			}
			return format(day, month, year), true
		}
	}

	m := e.reNumericDMY.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year := atoi(m[3])
	if !e.yearValid(year) {
		return "", false
	}
	month, day, ok := resolveDayMonth(atoi(m[1]), atoi(m[2]))
	if !ok {
		return Sentinel, true
	}
	return format(day, month, year), true
}

func (e *Extractor) tryYearShortMonth(s string) (string, bool) {
	m := e.reYearShortMonth.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	year, month := atoi(m[1]), atoi(m[2])
	if !e.yearValid(year) || month < 1 || month > 12 {
		return "", false
	}
	return format(0, month, year), true
}

// scanMaxYear finds every standalone 4-digit run within the valid year range
// and returns the maximum.  Standalone means not adjacent to another digit,
// so "343699" and "23539" contribute nothing.
func (e *Extractor) scanMaxYear(s string) (int, bool) {
	best := 0
	for _, loc := range e.reYearToken.FindAllStringIndex(s, -1) {
		if loc[0] > 0 && isDigit(s[loc[0]-1]) {
			continue
		}
		if loc[1] < len(s) && isDigit(s[loc[1]]) {
			continue
		}
		year := atoi(s[loc[0]:loc[1]])
		if e.yearValid(year) && year > best {
			best = year
		}
	}
	return best, best != 0
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// resolveDayMonth decides which of two numbers is the day and which is the
// month.  first is preferred as the day when both readings are valid.
func resolveDayMonth(first, second int) (month, day int, ok bool) {
	firstIsDay := first >= 1 && first <= 31 && second >= 1 && second <= 12
	secondIsDay := second >= 1 && second <= 31 && first >= 1 && first <= 12
	switch {
	case firstIsDay:
		return second, first, true
	case secondIsDay:
		return first, second, true
	default:
		return 0, 0, false
	}
}

func (e *Extractor) yearValid(year int) bool {
	return year >= e.minYear && year <= e.maxYear
}

func (e *Extractor) month(name string) int {
	return monthNames[strings.ToLower(name)]
}

// format renders the canonical DDMMYYYY string.  A day outside 1..31 or a
// month outside 1..12 degrades to its "00" placeholder rather than failing
// the whole extraction.
func format(day, month, year int) string {
	if day < 1 || day > 31 {
		day = 0
	}
	if month < 1 || month > 12 {
		month = 0
	}
	return fmt.Sprintf("%02d%02d%04d", day, month, year)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
