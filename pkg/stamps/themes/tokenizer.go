package themes

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// tokenize splits text into lowercase, accent-free word tokens. Any rune
// that is not a letter or digit is a boundary, which gives the same word
// edges as a \b regex.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}
	if folded, _, err := transform.String(stripAccents, text); err == nil {
		text = folded
	}

	var tokens []string
	var current strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(unicode.ToLower(r))
			continue
		}
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

// fold is the comparison key for keywords and theme names.
func fold(s string) string {
	return strings.Join(tokenize(s), " ")
}
