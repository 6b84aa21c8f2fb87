package terminal

import (
	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
)

// Color is a terminal text color.
type Color int

// Color constants.
const (
	ColorNone Color = iota
	ColorGreen
	ColorYellow
	ColorRed
	ColorBlue
	ColorGray
)

var colorAttributes = map[Color]color.Attribute{
	ColorGreen:  color.FgGreen,
	ColorYellow: color.FgYellow,
	ColorRed:    color.FgRed,
	ColorBlue:   color.FgBlue,
	ColorGray:   color.FgHiBlack,
}

// Colorize applies color to text. If NoColor is set the text is returned unchanged.
func (c Config) Colorize(text string, fg Color) string {
	attr, ok := colorAttributes[fg]
	if c.NoColor || !ok {
		return text
	}

	painter := color.New(attr)
	// The report may go to a pipe or file; the caller decides about color.
	painter.EnableColor()

	return painter.Sprint(text)
}

// ColorForTier maps a risk tier to its display color.
func ColorForTier(tier risk.Tier) Color {
	switch tier {
	case risk.TierHigh:
		return ColorRed
	case risk.TierMedium:
		return ColorYellow
	default:
		return ColorGreen
	}
}

// Tier renders a tier name in its color.
func (c Config) Tier(tier risk.Tier) string {
	return c.Colorize(tier.String(), ColorForTier(tier))
}
