package display

import (
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 80

// Wrap word-wraps text to width, preserving ANSI escape sequences. A
// width of zero or less uses DefaultWidth.
func Wrap(text string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	return wordwrap.String(text, width)
}

// Hanging wraps text so the first line starts after prefix and the
// following lines are indented to line up under it.
func Hanging(prefix, text string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	pad := len(prefix)
	if pad >= width {
		return prefix + text
	}

	body := wordwrap.String(text, width-pad)
	first, rest, found := strings.Cut(body, "\n")
	if !found {
		return prefix + first
	}
	return prefix + first + "\n" + indent.String(rest, uint(pad))
}

// Capitalize returns s with its first character uppercased.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
