package plotpage

// Theme represents a color theme for report pages.
type Theme string

const (
	// ThemeLight is the light color theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark color theme.
	ThemeDark Theme = "dark"
)

// ThemeConfig holds the styling values of one theme.
type ThemeConfig struct {
	Background string
	Surface    string
	Border     string

	TextPrimary string
	TextMuted   string

	Accent string

	// Risk tier colors.
	TierLow    string
	TierMedium string
	TierHigh   string

	ChartBackground string
	ChartGrid       string
	ChartAxis       string
	ChartText       string
	ChartTextMuted  string

	// HeatScale runs from the coolest to the hottest heatmap cell.
	HeatScale []string

	// Series colors for multi-series charts.
	Series []string
}

// GetThemeConfig returns the configuration for a given theme. Unknown themes
// fall back to light.
func GetThemeConfig(theme Theme) ThemeConfig {
	if theme == ThemeDark {
		return darkTheme
	}

	return lightTheme
}

var lightTheme = ThemeConfig{
	Background: "#fafaf9", // stone-50.
	Surface:    "#ffffff",
	Border:     "#e7e5e4", // stone-200.

	TextPrimary: "#1c1917", // stone-900.
	TextMuted:   "#78716c", // stone-500.

	Accent: "#a16207", // amber-700.

	TierLow:    "#16a34a", // green-600.
	TierMedium: "#ca8a04", // yellow-600.
	TierHigh:   "#dc2626", // red-600.

	ChartBackground: "transparent",
	ChartGrid:       "#e7e5e4",
	ChartAxis:       "#a8a29e", // stone-400.
	ChartText:       "#44403c", // stone-700.
	ChartTextMuted:  "#78716c",

	HeatScale: []string{"#f0fdf4", "#fef9c3", "#fed7aa", "#fca5a5", "#dc2626"},
	Series:    []string{"#a16207", "#0369a1", "#4d7c0f", "#7c3aed"},
}

var darkTheme = ThemeConfig{
	Background: "#0c0a09", // stone-950.
	Surface:    "#1c1917", // stone-900.
	Border:     "#44403c", // stone-700.

	TextPrimary: "#fafaf9",
	TextMuted:   "#a8a29e", // stone-400.

	Accent: "#d97706", // amber-600.

	TierLow:    "#22c55e", // green-500.
	TierMedium: "#eab308", // yellow-500.
	TierHigh:   "#ef4444", // red-500.

	ChartBackground: "transparent",
	ChartGrid:       "#44403c",
	ChartAxis:       "#57534e", // stone-600.
	ChartText:       "#d6d3d1", // stone-300.
	ChartTextMuted:  "#a8a29e",

	HeatScale: []string{"#14532d", "#3f6212", "#a16207", "#c2410c", "#b91c1c"},
	Series:    []string{"#fbbf24", "#38bdf8", "#a3e635", "#a78bfa"},
}
