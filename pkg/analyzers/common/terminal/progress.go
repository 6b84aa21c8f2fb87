package terminal

import (
	"fmt"
	"strings"
)

// Progress bar characters.
const (
	ProgressFilled = "█"
	ProgressEmpty  = "░"
)

// PercentMultiplier converts 0-1 to 0-100.
const PercentMultiplier = 100

// DrawProgressBar draws a bar of the given width. Value is clamped to [0, 1].
// Example: DrawProgressBar(0.7, 10) returns "███████░░░".
func DrawProgressBar(value float64, width int) string {
	value = min(max(value, 0), 1)

	filled := int(value * float64(width))

	return strings.Repeat(ProgressFilled, filled) + strings.Repeat(ProgressEmpty, width-filled)
}

// DrawPercentBar draws one labeled histogram row.
// Example: "4-6      ████████░░░░░░░░  40%  (8)".
func DrawPercentBar(label string, count, total, labelWidth, barWidth int) string {
	var fraction float64
	if total > 0 {
		fraction = float64(count) / float64(total)
	}

	return fmt.Sprintf("%s %s %3d%%  (%d)",
		PadRight(label, labelWidth), DrawProgressBar(fraction, barWidth), int(fraction*PercentMultiplier), count)
}
