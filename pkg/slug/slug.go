// Package slug derives URL identifiers for content posts.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases s, folds accents to ASCII, collapses every run of other
// characters into one hyphen and trims hyphens from both ends.
// Make(Make(s)) == Make(s) for every s.
func Make(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err != nil {
		folded = s
	}
	out := nonAlphanumeric.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(out, "-")
}

// WithSuffix returns base for n <= 1 and base-n otherwise.
func WithSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	if base == "" {
		return strconv.Itoa(n)
	}
	return base + "-" + strconv.Itoa(n)
}

// Valid reports whether s is already in canonical form.
func Valid(s string) bool {
	return s != "" && Make(s) == s
}
