package agent

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// minFuzzyTokenLen excludes short tokens ("a", "of", "me") from keyword
// matching; they match far too much by containment.
const minFuzzyTokenLen = 3

// keywordMatches reports whether any message token matches keyword by
// equality, containment in either direction, or edit-distance similarity
// above threshold. Multi-word keywords match as a substring of the message.
func keywordMatches(keyword, message string, tokens []string, threshold float64) bool {
	if strings.ContainsRune(keyword, ' ') {
		return strings.Contains(message, keyword)
	}
	kwLen := utf8.RuneCountInString(keyword)
	for _, token := range tokens {
		tokLen := utf8.RuneCountInString(token)
		if tokLen < minFuzzyTokenLen {
			continue
		}
		if token == keyword {
			return true
		}
		if kwLen >= minFuzzyTokenLen && (strings.Contains(token, keyword) || strings.Contains(keyword, token)) {
			return true
		}
		if similarity(token, keyword) > threshold {
			return true
		}
	}
	return false
}

// similarity is 1 - distance(a, b) / max(len(a), len(b)), in runes.
func similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
