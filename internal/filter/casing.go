package filter

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// Upper upper-cases an exam code.
func Upper(s string) string {
	return upper.String(s)
}

// Lower lower-cases a value for the backend query.
func Lower(s string) string {
	return lower.String(s)
}

// Title capitalizes the first letter of each space-separated word and
// lower-cases the rest, so "computer NETWORKS" becomes "Computer Networks".
func Title(s string) string {
	words := strings.Split(lower.String(s), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		_, size := utf8.DecodeRuneInString(word)
		words[i] = upper.String(word[:size]) + word[size:]
	}
	return strings.Join(words, " ")
}
