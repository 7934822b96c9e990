package llmclient

import (
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
)

type SentenceSplitter interface {
	Split(text string) []string
}

// ProseSplitter segments with prose's punkt model and falls back to the
// regex splitter if prose cannot build a document.
type ProseSplitter struct {
	fallback SentenceSplitter
}

func NewProseSplitter() ProseSplitter {
	return ProseSplitter{fallback: NewRegexSentenceSplitter()}
}

func (p ProseSplitter) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	doc, err := prose.NewDocument(trimmed,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithTokenization(false))
	if err != nil {
		return p.fallback.Split(trimmed)
	}
	var sentences []string
	for _, s := range doc.Sentences() {
		if t := strings.TrimSpace(s.Text); t != "" {
			sentences = append(sentences, t)
		}
	}
	if len(sentences) == 0 {
		return p.fallback.Split(trimmed)
	}
	return sentences
}

// sentenceEnd matches terminal punctuation, any closing quotes or
// brackets, and the whitespace (or end of text) after them.
var sentenceEnd = regexp.MustCompile(`[.!?]+["'”’)\]]*(?:\s+|$)`)

// RegexSentenceSplitter splits after terminal punctuation that is followed
// by whitespace, so decimals and abbreviations glued to the next word stay
// intact.
type RegexSentenceSplitter struct{}

func NewRegexSentenceSplitter() RegexSentenceSplitter {
	return RegexSentenceSplitter{}
}

func (RegexSentenceSplitter) Split(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(trimmed, -1) {
		if sentence := strings.TrimSpace(trimmed[start:loc[1]]); sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = loc[1]
	}
	if rest := strings.TrimSpace(trimmed[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?':
		return true
	default:
		return false
	}
}
