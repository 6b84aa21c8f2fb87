package plotpage

import (
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	defaultChartHeight = "420px"
	heatMapRowHeight   = 36
	heatMapMinHeight   = 240
	heatLabelDecimals  = 100
)

// SeriesData is a single numeric value in a chart series (int or float64).
type SeriesData any

// BarSeries defines the properties and data for a single bar chart series.
type BarSeries struct {
	Name  string
	Data  []SeriesData
	Color string // Optional, uses theme if empty.
	Stack string // Optional, stack grouping.
}

// BuildBarChart constructs a themed bar chart. If cOpts is nil,
// DefaultChartOpts() is used.
func BuildBarChart(cOpts *ChartOpts, labels []string, series []BarSeries, yAxisLabel string) *charts.Bar {
	if cOpts == nil {
		cOpts = DefaultChartOpts()
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init("100%", defaultChartHeight)),
		charts.WithTooltipOpts(cOpts.Tooltip("axis")),
		charts.WithXAxisOpts(cOpts.XAxis("")),
		charts.WithYAxisOpts(cOpts.YAxis(yAxisLabel)),
		charts.WithLegendOpts(cOpts.Legend()),
	)

	bar.SetXAxis(labels)

	palette := cOpts.theme.Series

	for i, s := range series {
		barData := make([]opts.BarData, len(s.Data))
		for j, v := range s.Data {
			barData[j] = opts.BarData{Value: v}
		}

		color := s.Color
		if color == "" && len(palette) > 0 {
			color = palette[i%len(palette)]
		}

		seriesOpts := []charts.SeriesOpts{charts.WithItemStyleOpts(opts.ItemStyle{Color: color})}

		if s.Stack != "" {
			seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: s.Stack}))
		}

		bar.AddSeries(s.Name, barData, seriesOpts...)
	}

	return bar
}

// BuildHeatMap constructs a heatmap with one row per yLabel and one column per
// xLabel. values[row][col] must lie in [0, 1]; labels[row][col], when given,
// is shown inside the cell instead of the value.
func BuildHeatMap(cOpts *ChartOpts, xLabels, yLabels []string, values [][]float64, labels [][]string) *charts.HeatMap {
	if cOpts == nil {
		cOpts = DefaultChartOpts()
	}

	height := max(heatMapMinHeight, heatMapRowHeight*len(yLabels)+heatMapMinHeight/2)

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(cOpts.Init("100%", strconv.Itoa(height)+"px")),
		charts.WithTooltipOpts(cOpts.Tooltip("item")),
		charts.WithXAxisOpts(cOpts.CategoryXAxis(xLabels)),
		charts.WithYAxisOpts(cOpts.CategoryYAxis(yLabels)),
		charts.WithVisualMapOpts(cOpts.HeatScale(1)),
		charts.WithGridOpts(opts.Grid{Left: "25%", Right: "5%", Top: "5%", Bottom: "20%"}),
	)

	data := make([]opts.HeatMapData, 0, len(xLabels)*len(yLabels))

	for row, rowValues := range values {
		for col, v := range rowValues {
			name := ""
			if row < len(labels) && col < len(labels[row]) {
				name = labels[row][col]
			}

			data = append(data, opts.HeatMapData{
				Name:  name,
				Value: []any{col, row, math.Round(v*heatLabelDecimals) / heatLabelDecimals},
			})
		}
	}

	hm.AddSeries("risk", data, charts.WithLabelOpts(opts.Label{
		Show:      opts.Bool(true),
		Position:  "inside",
		Formatter: "{b}",
		FontSize:  labelFontSize,
	}))

	return hm
}
