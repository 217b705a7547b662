// Package slug derives and checks the public URL handle of a law firm.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Pattern is the only accepted slug shape: lowercase alphanumerics separated
// by single hyphens.
var Pattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var separatorRun = regexp.MustCompile(`[^a-z0-9]+`)

// FromName lowercases name, strips diacritics and collapses every run of
// non-alphanumeric characters into one hyphen. The result may be empty.
func FromName(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	lowered := strings.ToLower(strings.TrimSpace(folded))
	return strings.Trim(separatorRun.ReplaceAllString(lowered, "-"), "-")
}

// Valid reports whether s already has slug shape. Lookups never normalize.
func Valid(s string) bool {
	return Pattern.MatchString(s)
}
