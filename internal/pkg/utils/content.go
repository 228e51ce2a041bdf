package utils

import (
	"html/template"
	"regexp"
	"strings"
)

var blankLines = regexp.MustCompile(`\n\s*\n`)

// Paragraphs escapes plain listing text and turns blank-line separated blocks
// into paragraphs and single newlines into line breaks.
func Paragraphs(text string) template.HTML {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n")
	if text == "" {
		return ""
	}
	var b strings.Builder
	for _, block := range blankLines.Split(text, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		for i, l := range lines {
			lines[i] = template.HTMLEscapeString(strings.TrimSpace(l))
		}
		b.WriteString(`<p class="mb-4 leading-relaxed">`)
		b.WriteString(strings.Join(lines, "<br>"))
		b.WriteString("</p>")
	}
	return template.HTML(b.String())
}

// Truncate shortens s to at most n runes, ending with an ellipsis.
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
