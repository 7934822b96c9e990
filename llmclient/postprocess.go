package llmclient

import (
	"strings"
	"unicode/utf8"
)

const ellipsis = "..."

// Truncate trims text and, if it exceeds maxChars runes, cuts it back to
// the longest run of whole sentences that fits. With no sentence boundary
// inside the budget it hard-cuts and appends an ellipsis. maxChars <= 0
// disables the limit.
func Truncate(text string, maxChars int, splitter SentenceSplitter) string {
	text = strings.TrimSpace(text)
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	// Cut the original text after the last sentence that fits so line
	// breaks between sentences survive.
	end, cursor := 0, 0
	for _, sentence := range splitter.Split(text) {
		if !endsSentence(sentence) {
			break
		}
		at := strings.Index(text[cursor:], sentence)
		if at < 0 {
			break
		}
		next := cursor + at + len(sentence)
		if utf8.RuneCountInString(text[:next]) > maxChars {
			break
		}
		end, cursor = next, next
	}
	if end > 0 {
		return text[:end]
	}

	runes := []rune(text)
	if maxChars <= len(ellipsis) {
		return string(runes[:maxChars])
	}
	return strings.TrimRight(string(runes[:maxChars-len(ellipsis)]), " \t\n") + ellipsis
}

// endsSentence reports whether s ends in terminal punctuation, allowing
// trailing quotes or brackets.
func endsSentence(s string) bool {
	s = strings.TrimRight(s, "\"'”’)] ")
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return isTerminal(r)
}
