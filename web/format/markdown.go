// Package format renders stored message text for display.
package format

import (
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

var listItem = regexp.MustCompile(`^(?:[-*+]|\d+\.)\s`)

// PreprocessAssistantText normalizes reply text.
func PreprocessAssistantText(text string) string {
	if text == "" {
		return text
	}

	// Replace curly quotes (helps readability)
	return strings.NewReplacer(
		"“", "\"",
		"”", "\"",
		"‘", "'",
		"’", "'",
	).Replace(text)
}

// ToHTML renders message text as HTML. Raw HTML in the input is dropped.
func ToHTML(text string) string {
	text = normalizeMarkdownLists(PreprocessAssistantText(text))

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.HrefTargetBlank,
	})
	return strings.TrimSpace(string(markdown.ToHTML([]byte(text), p, renderer)))
}

// normalizeMarkdownLists inserts the blank line markdown needs before a
// list that directly follows a paragraph line.
func normalizeMarkdownLists(text string) string {
	lines := strings.Split(text, "\n")
	result := make([]string, 0, len(lines))

	for i, line := range lines {
		if i > 0 && listItem.MatchString(strings.TrimSpace(line)) {
			prev := strings.TrimSpace(lines[i-1])
			if prev != "" && !listItem.MatchString(prev) {
				result = append(result, "")
			}
		}
		result = append(result, line)
	}

	return strings.Join(result, "\n")
}
