package quality

import (
	"strings"
	"unicode/utf8"
)

// DefaultLongLineLimit is the maximum line length, in characters, before a line
// counts as long.
const DefaultLongLineLimit = 79

// SplitLines splits source into physical lines. A trailing newline does not start
// an extra line and carriage returns before a newline are dropped.
func SplitLines(source []byte) []string {
	if len(source) == 0 {
		return nil
	}

	text := strings.TrimSuffix(string(source), "\n")
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

// CommentRatio returns the share of lines whose trimmed content starts with '#'.
// Blank lines count in the denominator.
func CommentRatio(lines []string) float64 {
	if len(lines) == 0 {
		return 0
	}

	comments := 0

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			comments++
		}
	}

	return ratio(comments, len(lines))
}

// LongLineRatio returns the share of lines longer than limit characters.
func LongLineRatio(lines []string, limit int) float64 {
	if len(lines) == 0 {
		return 0
	}

	long := 0

	for _, line := range lines {
		if utf8.RuneCountInString(line) > limit {
			long++
		}
	}

	return ratio(long, len(lines))
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}

	return float64(part) / float64(total)
}
