package citation

import (
	"regexp"
	"strconv"
	"time"
)

// Detection patterns used for pipeline gating and for the standards skip
// filters.  GenBank matching is deliberately case-sensitive: "cas" and "pdb"
// as plain words are common, the database names are not.
var (
	reStandardsBody = regexp.MustCompile(`(?i)\b(?:3GPP|IEEE)\b`)
	re3GPPPresent   = regexp.MustCompile(`(?i)\b3GPP\b`)
	re3GPPDocument  = regexp.MustCompile(`(?i)\b(?:(?:TS|TR)\s*\d{1,3}(?:\.\d{1,3})?|CR\s*\d{1,4}|[RS][PSCN\d]-?\d{6,7})\b`)
	reIEEEPresent   = regexp.MustCompile(`(?i)\bIEEE\b`)
	reIEEEDocument  = regexp.MustCompile(`(?i)\bP?\d{3,4}(?:\.[A-Za-z0-9]+)+\b`)
	reGenBank       = regexp.MustCompile(`\b(?:CAS|genbank|Genbank|Uniprot|Swissprot|PDB|RefSeq|NCBI)\b`)
	reDOI           = regexp.MustCompile(`(?i)\b(?:10\.[1-9]\d{3,8}/[-._;()/:A-Z0-9]+|https?://(?:dx\.)?doi\.org/10\.\d{4,9}/[-._;()/:A-Z0-9]+)\b`)
	reFourDigits    = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

// ContainsStandardsBody reports whether text names a standards body.
func ContainsStandardsBody(text string) bool {
	return reStandardsBody.MatchString(text)
}

// ContainsGenBank reports whether text names a biological or chemical
// database.
func ContainsGenBank(text string) bool {
	return reGenBank.MatchString(text)
}

// ContainsDOI reports whether text carries a DOI in bare or URL form.
func ContainsDOI(text string) bool {
	return reDOI.MatchString(text)
}

// ContainsYear reports whether text carries a standalone year between 1900
// and the current calendar year.
func ContainsYear(text string) bool {
	maxYear := time.Now().Year()
	for _, tok := range reFourDigits.FindAllString(text, -1) {
		if y, err := strconv.Atoi(tok); err == nil && y >= 1900 && y <= maxYear {
			return true
		}
	}
	return false
}

// Find3GPPReferences returns the 3GPP document identifiers in text, in
// order, without duplicates.  The body name itself must appear somewhere in
// the text; bare "TS 23.501"-shaped tokens alone are too ambiguous.
func Find3GPPReferences(text string) []string {
	if !re3GPPPresent.MatchString(text) {
		return nil
	}
	return dedup(re3GPPDocument.FindAllString(text, -1))
}

// FindIEEEReferences returns the IEEE document identifiers in text, in
// order, without duplicates, subject to the same body-name gate.
func FindIEEEReferences(text string) []string {
	if !reIEEEPresent.MatchString(text) {
		return nil
	}
	return dedup(reIEEEDocument.FindAllString(text, -1))
}

func dedup(items []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
