package terminal

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to truncated strings.
const Ellipsis = "..."

// EllipsisLen is the length of the ellipsis string.
const EllipsisLen = 3

// TruncateLeft shortens s to maxWidth runes by dropping its head, which keeps
// the file name end of long paths visible.
func TruncateLeft(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) <= maxWidth {
		return s
	}

	if maxWidth <= EllipsisLen {
		return strings.Repeat(".", maxWidth)
	}

	return Ellipsis + string(runes[len(runes)-maxWidth+EllipsisLen:])
}

// PadRight pads s with spaces on the right to reach width runes.
func PadRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}

	return s + strings.Repeat(" ", width-n)
}
