// Package terminal provides the box, bar and color helpers behind the text report.
package terminal

import (
	"os"
	"strconv"
)

// Report widths in columns. A COLUMNS value outside [MinWidth, MaxWidth] is
// pulled back into range so tables never collapse or sprawl.
const (
	DefaultWidth = 100
	MinWidth     = 60
	MaxWidth     = 160
)

// Config is how the text report draws: its width and whether ANSI colors are used.
type Config struct {
	Width   int
	NoColor bool
}

// NewConfig reads COLUMNS and NO_COLOR from the process environment.
func NewConfig() Config {
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup. Any non-empty NO_COLOR disables colors.
func FromEnv(lookup func(key string) (string, bool)) Config {
	columns, _ := lookup("COLUMNS")
	noColor, _ := lookup("NO_COLOR")

	return Config{
		Width:   parseColumns(columns),
		NoColor: noColor != "",
	}
}

// WithWidth returns a copy drawing at width, or at DefaultWidth when width is
// not positive.
func (c Config) WithWidth(width int) Config {
	if width <= 0 {
		width = DefaultWidth
	}

	c.Width = width

	return c
}

// DetectWidth returns the report width for the COLUMNS environment variable.
func DetectWidth() int {
	return parseColumns(os.Getenv("COLUMNS"))
}

func parseColumns(columns string) int {
	width, err := strconv.Atoi(columns)
	if err != nil || columns == "" {
		return DefaultWidth
	}

	return min(max(width, MinWidth), MaxWidth)
}
