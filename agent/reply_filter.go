package agent

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ReplyFilter rewrites a final reply before it is stored and returned.
type ReplyFilter interface {
	Filter(reply string) string
}

// PersonaFilter strips assistant-style disclaimers that break character.
type PersonaFilter struct {
	patterns []*regexp.Regexp
}

var (
	disclaimerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bas an? (?:ai|artificial intelligence|language model|ai language model|virtual assistant)\b[^,.!?]*[,.!?]\s*`),
		regexp.MustCompile(`(?i)\bi(?:'m| am) (?:just |only )?(?:an? )?(?:ai|language model|virtual assistant|chatbot|computer program)\b[^.!?]*[.!?]\s*`),
		regexp.MustCompile(`(?i)\bi (?:don't|do not) have (?:personal )?(?:feelings|opinions|experiences|a body)\b[^.!?]*[.!?]\s*`),
	}
	multiSpace = regexp.MustCompile(`[ \t]{2,}`)
)

func NewPersonaFilter() *PersonaFilter {
	return &PersonaFilter{patterns: disclaimerPatterns}
}

// Filter removes disclaimer clauses. If nothing would remain, the reply is
// returned unchanged.
func (f *PersonaFilter) Filter(reply string) string {
	out := reply
	for _, p := range f.patterns {
		out = p.ReplaceAllString(out, "")
	}
	if out == reply {
		return reply
	}
	out = strings.TrimSpace(multiSpace.ReplaceAllString(out, " "))
	if out == "" {
		return reply
	}
	return capitalizeFirst(out)
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
