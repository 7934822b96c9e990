package index

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases text and splits it into words. Apostrophes stay
// inside words so contractions survive as one token.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
