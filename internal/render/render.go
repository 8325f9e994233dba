// Package render turns raw message text into display form. Text is always
// escaped for the target medium before newlines become line breaks, so a
// reply can never inject markup or terminal control sequences.
package render

import (
	"html"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// LineBreak is the HTML element emitted for every newline.
const LineBreak = "<br>"

// HTML escapes text and converts each "\n" into a single <br>.
func HTML(text string) string {
	escaped := html.EscapeString(normalizeNewlines(text))
	return strings.ReplaceAll(escaped, "\n", LineBreak)
}

// Lines strips ANSI escape sequences and stray control characters, then splits
// the text into display lines. The result always has one more element than
// the number of newlines in the input.
func Lines(text string) []string {
	clean := Sanitize(text)
	return strings.Split(clean, "\n")
}

// Sanitize removes terminal escape sequences and control characters other
// than newline and tab.
func Sanitize(text string) string {
	stripped := ansi.Strip(normalizeNewlines(text))
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		case r >= 0x80 && r < 0xa0:
			return -1
		}
		return r
	}, stripped)
}

// normalizeNewlines folds CRLF into "\n". A lone CR is not a newline and is
// left in place, so breaks always match "\n" one to one.
func normalizeNewlines(text string) string {
	if !strings.Contains(text, "\r\n") {
		return text
	}
	return strings.ReplaceAll(text, "\r\n", "\n")
}
