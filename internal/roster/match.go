package roster

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds a display name into the form used for shortlist
// matching: diacritics stripped, case folded, and any run of punctuation or
// whitespace collapsed to a single space. "Niko Hernández" and
// "niko  hernandez" normalize to the same string.
func NormalizeName(name string) string {
	// Transformers and casers carry state, so they are built per call.
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(strip, name)
	if err != nil {
		out = name
	}
	out = cases.Fold().String(out)

	fields := strings.FieldsFunc(out, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return strings.Join(fields, " ")
}

// MatchesShortlist reports whether name matches any shortlist entry. A match
// is substring containment in either direction after normalization.
func MatchesShortlist(name string, shortlist []string) bool {
	candidate := NormalizeName(name)
	if candidate == "" {
		return false
	}
	for _, entry := range shortlist {
		want := NormalizeName(entry)
		if want == "" {
			continue
		}
		if strings.Contains(candidate, want) || strings.Contains(want, candidate) {
			return true
		}
	}
	return false
}
