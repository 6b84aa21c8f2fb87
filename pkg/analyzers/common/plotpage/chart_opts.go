package plotpage

import (
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	dataZoomEndPercent = 100
	labelFontSize      = 10
)

// ChartOpts provides themed chart options based on the current theme.
type ChartOpts struct {
	theme ThemeConfig
}

// NewChartOpts creates a new ChartOpts with the given theme.
func NewChartOpts(theme Theme) *ChartOpts {
	return &ChartOpts{theme: GetThemeConfig(theme)}
}

// DefaultChartOpts returns chart options for the default dark theme.
func DefaultChartOpts() *ChartOpts {
	return NewChartOpts(ThemeDark)
}

// Theme returns the underlying theme configuration.
func (c *ChartOpts) Theme() ThemeConfig {
	return c.theme
}

// Init returns initialization options with themed background.
func (c *ChartOpts) Init(width, height string) opts.Initialization {
	return opts.Initialization{
		Width:           width,
		Height:          height,
		BackgroundColor: c.theme.ChartBackground,
	}
}

// Legend returns legend options with themed text color.
func (c *ChartOpts) Legend() opts.Legend {
	return opts.Legend{
		Show:      opts.Bool(true),
		Type:      "scroll",
		Top:       "0",
		Left:      "center",
		TextStyle: &opts.TextStyle{Color: c.theme.ChartTextMuted},
	}
}

// XAxis returns x-axis options with themed colors.
func (c *ChartOpts) XAxis(name string) opts.XAxis {
	return opts.XAxis{
		Name:      name,
		AxisLabel: &opts.AxisLabel{Color: c.theme.ChartTextMuted},
		AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
	}
}

// YAxis returns y-axis options with themed colors.
func (c *ChartOpts) YAxis(name string) opts.YAxis {
	return opts.YAxis{
		Name:      name,
		AxisLabel: &opts.AxisLabel{Color: c.theme.ChartTextMuted},
		AxisLine:  &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
		SplitLine: &opts.SplitLine{
			Show:      opts.Bool(true),
			LineStyle: &opts.LineStyle{Color: c.theme.ChartGrid},
		},
	}
}

// CategoryXAxis returns a category x-axis over labels, for heatmaps.
func (c *ChartOpts) CategoryXAxis(labels []string) opts.XAxis {
	return opts.XAxis{
		Type:      "category",
		Data:      labels,
		SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		AxisLabel: &opts.AxisLabel{Interval: "0", FontSize: labelFontSize, Color: c.theme.ChartTextMuted},
	}
}

// CategoryYAxis returns a category y-axis over labels, for heatmaps.
func (c *ChartOpts) CategoryYAxis(labels []string) opts.YAxis {
	return opts.YAxis{
		Type:      "category",
		Data:      labels,
		SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		AxisLabel: &opts.AxisLabel{FontSize: labelFontSize, Color: c.theme.ChartTextMuted},
	}
}

// HeatScale returns a visual map from 0 (cool) to maxVal (hot).
func (c *ChartOpts) HeatScale(maxVal float32) opts.VisualMap {
	return opts.VisualMap{
		Calculable: opts.Bool(true),
		Min:        0,
		Max:        maxVal,
		InRange:    &opts.VisualMapInRange{Color: c.theme.HeatScale},
		Orient:     "horizontal",
		Left:       "center",
		Bottom:     "2%",
	}
}

// DataZoom returns standard data zoom options.
func (c *ChartOpts) DataZoom() []opts.DataZoom {
	return []opts.DataZoom{
		{Type: "slider", Start: 0, End: dataZoomEndPercent},
		{Type: "inside"},
	}
}

// Tooltip returns tooltip options.
func (c *ChartOpts) Tooltip(trigger string) opts.Tooltip {
	return opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}
}
