package extractor

import "strings"

// ExcerptLength is the number of characters kept by Excerpt.
const ExcerptLength = 120

var lineBreaks = strings.NewReplacer("\n", " ", "\r", " ")

// Excerpt returns the first ExcerptLength characters of s with line breaks
// turned into spaces.
func Excerpt(s string) string {
	runes := []rune(s)
	if len(runes) > ExcerptLength {
		runes = runes[:ExcerptLength]
	}
	return lineBreaks.Replace(string(runes))
}
