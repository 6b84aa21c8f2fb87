package render

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/go-echarts/go-echarts/v2/charts"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/common/plotpage"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/quality"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/report"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
)

// HTML report limits.
const (
	HeatmapFiles       = 12
	PreviewLines       = 30
	zoomAfterFunctions = 20
)

var heatmapColumns = []string{"CC_avg", "CC_max", "LEN_avg", "LEN_max", "NEST_avg", "COMMENT", "DOC"}

// HTML writes a self-contained HTML report with charts, tables and source
// previews of the riskiest functions.
func HTML(w io.Writer, result report.AnalysisResult, opts Options) error {
	s := result.Summary
	cOpts := plotpage.DefaultChartOpts()

	page := plotpage.NewPage("Complexity and risk report",
		fmt.Sprintf("%s files, %s functions, %s smells",
			humanize.Comma(int64(s.NumFiles)), humanize.Comma(int64(s.NumFunctions)), humanize.Comma(int64(len(result.Smells)))))

	stats, err := plotpage.Stats(summaryStats(result))
	if err != nil {
		return err
	}

	page.Add(plotpage.Section{Title: "Summary", Content: stats})

	if s.NumFunctions > 0 {
		page.Add(
			plotpage.Section{
				Title:    "Cyclomatic complexity",
				Subtitle: "Functions per CC bucket",
				Chart:    histogram(cOpts, s.CCDistribution, "functions"),
				Hint: plotpage.Hint{
					Title: "Reading the chart",
					Items: []string{"CC counts independent paths; 11 and above is hard to test exhaustively."},
				},
			},
			plotpage.Section{
				Title:    "Function length",
				Subtitle: "Functions per logical line bucket",
				Chart:    histogram(cOpts, s.LENDistribution, "functions"),
			},
		)
	}

	page.Add(plotpage.Section{
		Title:    "Risk tiers",
		Subtitle: "Functions, files and smells per tier",
		Chart:    tierChart(cOpts, s),
	})

	if files := result.TopFiles(HeatmapFiles); len(files) > 0 {
		page.Add(plotpage.Section{
			Title:    "Riskiest files",
			Subtitle: fmt.Sprintf("Top %d files, each column scaled to its maximum", len(files)),
			Chart:    fileHeatmap(cOpts, files),
			Hint: plotpage.Hint{
				Title: "Reading the heatmap",
				Items: []string{
					"Hot cells mark the worst files for that metric.",
					"COMMENT and DOC are inverted: low coverage is hot.",
				},
			},
		})
	}

	sections, err := functionSections(cOpts, result, opts)
	if err != nil {
		return err
	}

	page.Add(sections...)

	sections, err = listSections(result, opts)
	if err != nil {
		return err
	}

	page.Add(sections...)

	return page.Render(w)
}

func summaryStats(result report.AnalysisResult) []plotpage.Stat {
	s := result.Summary

	stats := []plotpage.Stat{
		{Label: "Files", Value: humanize.Comma(int64(s.NumFiles))},
		{Label: "Functions", Value: humanize.Comma(int64(s.NumFunctions))},
		{Label: "CC avg / max", Value: fmt.Sprintf("%.2f / %d", s.CCAvg, s.CCMax)},
		{Label: "LEN avg / max", Value: fmt.Sprintf("%.2f / %d", s.LENAvg, s.LENMax)},
		{Label: "NEST avg / max", Value: fmt.Sprintf("%.2f / %d", s.NESTAvg, s.NESTMax)},
		{Label: "High risk functions", Value: strconv.Itoa(s.FunctionTiers.High), Class: tierClass(risk.TierHigh)},
		{Label: "High smells", Value: strconv.Itoa(s.SmellTiers.High), Class: tierClass(risk.TierHigh)},
		{Label: "Docstring coverage", Value: pct(s.FileMetricAvg.DocstringCoverage)},
	}

	if s.NumFailed > 0 {
		stats = append(stats, plotpage.Stat{
			Label: "Files not analyzed", Value: strconv.Itoa(s.NumFailed), Class: tierClass(risk.TierHigh),
		})
	}

	return stats
}

func histogram(cOpts *plotpage.ChartOpts, buckets []report.Bucket, name string) *charts.Bar {
	labels := make([]string, len(buckets))
	data := make([]plotpage.SeriesData, len(buckets))

	for i, b := range buckets {
		labels[i] = b.Label
		data[i] = b.Count
	}

	return plotpage.BuildBarChart(cOpts, labels, []plotpage.BarSeries{{Name: name, Data: data}}, name)
}

func tierChart(cOpts *plotpage.ChartOpts, s report.Summary) *charts.Bar {
	theme := cOpts.Theme()
	counts := []report.TierCounts{s.FunctionTiers, s.FileTiers, s.SmellTiers}

	series := []plotpage.BarSeries{
		{Name: risk.TierLow.String(), Color: theme.TierLow, Stack: "tier"},
		{Name: risk.TierMedium.String(), Color: theme.TierMedium, Stack: "tier"},
		{Name: risk.TierHigh.String(), Color: theme.TierHigh, Stack: "tier"},
	}

	for _, c := range counts {
		series[0].Data = append(series[0].Data, c.Low)
		series[1].Data = append(series[1].Data, c.Medium)
		series[2].Data = append(series[2].Data, c.High)
	}

	return plotpage.BuildBarChart(cOpts, []string{"functions", "files", "smells"}, series, "count")
}

// heatmapRow returns the raw values of one file in heatmapColumns order.
// Ratio columns are inverted so that higher always means riskier.
func heatmapRow(f report.FileResult) (raw []float64, labels []string) {
	raw = []float64{
		f.CCAvg, float64(f.CCMax), f.LENAvg, float64(f.LENMax), f.NESTAvg,
		1 - f.CommentRatio, 1 - f.DocstringCoverage,
	}

	labels = []string{
		fmt.Sprintf("%.1f", f.CCAvg), strconv.Itoa(f.CCMax),
		fmt.Sprintf("%.1f", f.LENAvg), strconv.Itoa(f.LENMax),
		fmt.Sprintf("%.1f", f.NESTAvg),
		pct(f.CommentRatio), pct(f.DocstringCoverage),
	}

	return raw, labels
}

// normalizeColumns scales every column to [0, 1] by its maximum.
func normalizeColumns(rows [][]float64) [][]float64 {
	if len(rows) == 0 {
		return nil
	}

	peaks := make([]float64, len(rows[0]))

	for _, row := range rows {
		for col, v := range row {
			peaks[col] = max(peaks[col], v)
		}
	}

	out := make([][]float64, len(rows))

	for i, row := range rows {
		out[i] = make([]float64, len(row))

		for col, v := range row {
			if peaks[col] > 0 {
				out[i][col] = v / peaks[col]
			}
		}
	}

	return out
}

func fileHeatmap(cOpts *plotpage.ChartOpts, files []report.FileResult) *charts.HeatMap {
	names := make([]string, len(files))
	raw := make([][]float64, len(files))
	labels := make([][]string, len(files))

	// Echarts draws the first category at the bottom; reverse so the riskiest
	// file is on top.
	for i, f := range files {
		row := len(files) - 1 - i
		names[row] = f.Path
		raw[row], labels[row] = heatmapRow(f)
	}

	return plotpage.BuildHeatMap(cOpts, heatmapColumns, names, normalizeColumns(raw), labels)
}

func functionSections(cOpts *plotpage.ChartOpts, result report.AnalysisResult, opts Options) ([]plotpage.Section, error) {
	fns := result.TopFunctions(opts.TopN)
	if len(fns) == 0 {
		return nil, nil
	}

	rows := make([][]plotpage.Cell, 0, len(fns))
	labels := make([]string, 0, len(fns))
	data := make([]plotpage.SeriesData, 0, len(fns))

	for i, fn := range fns {
		rows = append(rows, []plotpage.Cell{
			{Text: strconv.Itoa(i + 1)},
			{Text: fn.QualifiedName},
			{Text: fn.File + ":" + strconv.Itoa(fn.Line)},
			{Text: strconv.Itoa(fn.CC)},
			{Text: strconv.Itoa(fn.LEN)},
			{Text: strconv.Itoa(fn.NEST)},
			{Text: fn.Tier.String(), Class: tierClass(fn.Tier)},
		})
		labels = append(labels, fn.QualifiedName)
		data = append(data, fn.CC)
	}

	table, err := plotpage.Table([]string{"#", "Function", "Location", "CC", "LEN", "NEST", "Tier"}, rows)
	if err != nil {
		return nil, err
	}

	bar := plotpage.BuildBarChart(cOpts, labels, []plotpage.BarSeries{{Name: "CC", Data: data}}, "CC")
	if len(fns) > zoomAfterFunctions {
		bar.SetGlobalOptions(charts.WithDataZoomOpts(cOpts.DataZoom()...))
	}

	previews, err := previewsFor(fns, opts.Source)
	if err != nil {
		return nil, err
	}

	return []plotpage.Section{
		{
			Title:    "Riskiest functions",
			Subtitle: fmt.Sprintf("%d of %d functions, ranked by CC then LEN", len(fns), len(result.Functions)),
			Chart:    bar,
			Content:  table,
		},
		{
			Title:    "Source previews",
			Subtitle: fmt.Sprintf("First %d lines of each function above", PreviewLines),
			Content:  previews,
		},
	}, nil
}

func previewsFor(fns []report.FunctionResult, source SourceFunc) (template.HTML, error) {
	if source == nil {
		source = os.ReadFile
	}

	cache := make(map[string][]string)

	var out template.HTML

	for _, fn := range fns {
		lines, ok := cache[fn.File]
		if !ok {
			content, err := source(fn.File)
			if err == nil {
				lines = quality.SplitLines(content)
			}

			cache[fn.File] = lines
		}

		snippet, truncated := excerpt(lines, fn.Line, fn.EndLine)
		if len(snippet) == 0 {
			continue
		}

		html, err := plotpage.Preview(plotpage.SourcePreview{
			Title:     fn.ID,
			Badge:     "CC " + strconv.Itoa(fn.CC),
			BadgeTier: tierClass(fn.Tier),
			Caption:   fmt.Sprintf("LEN %d, NEST %d", fn.LEN, fn.NEST),
			StartLine: fn.Line,
			Lines:     snippet,
			Truncated: truncated,
		})
		if err != nil {
			return "", err
		}

		out += html
	}

	return out, nil
}

// excerpt returns lines start..end (1-based, inclusive) capped at PreviewLines.
func excerpt(lines []string, start, end int) (out []string, truncated bool) {
	if start < 1 || start > len(lines) {
		return nil, false
	}

	end = min(max(end, start), len(lines))

	if end-start+1 > PreviewLines {
		end = start + PreviewLines - 1
		truncated = true
	}

	return lines[start-1 : end], truncated
}

func listSections(result report.AnalysisResult, opts Options) ([]plotpage.Section, error) {
	var sections []plotpage.Section

	if files := result.TopFiles(opts.TopN); len(files) > 0 {
		rows := make([][]plotpage.Cell, 0, len(files))

		for _, f := range files {
			rows = append(rows, []plotpage.Cell{
				{Text: f.Path},
				{Text: humanize.Comma(int64(f.Lines))},
				{Text: strconv.Itoa(f.FunctionCount)},
				{Text: fmt.Sprintf("%.2f", f.CCAvg)},
				{Text: strconv.Itoa(f.CCMax)},
				{Text: pct(f.CommentRatio)},
				{Text: pct(f.DocstringCoverage)},
				{Text: strconv.Itoa(len(f.UnusedImports))},
				{Text: strconv.Itoa(f.SmellCount)},
				{Text: f.Tier.String(), Class: tierClass(f.Tier)},
			})
		}

		table, err := plotpage.Table(
			[]string{"File", "Lines", "Funcs", "CC avg", "CC max", "Comments", "Docs", "Unused imports", "Smells", "Tier"},
			rows)
		if err != nil {
			return nil, err
		}

		sections = append(sections, plotpage.Section{Title: "Files", Content: table})
	}

	if len(result.Smells) > 0 {
		rows := make([][]plotpage.Cell, 0, len(result.Smells))

		for _, smell := range result.Smells {
			rows = append(rows, []plotpage.Cell{
				{Text: smell.Tier.String(), Class: tierClass(smell.Tier)},
				{Text: smell.SubjectKind},
				{Text: smell.Subject},
				{Text: smell.Metric},
				{Text: strconv.FormatFloat(smell.Observed, 'g', -1, 64)},
				{Text: strconv.FormatFloat(smell.Threshold, 'g', -1, 64)},
			})
		}

		table, err := plotpage.Table([]string{"Tier", "Kind", "Subject", "Metric", "Observed", "Threshold"}, rows)
		if err != nil {
			return nil, err
		}

		sections = append(sections, plotpage.Section{Title: "Smells", Content: table})
	}

	if len(result.Errors) > 0 {
		rows := make([][]plotpage.Cell, 0, len(result.Errors))

		for _, e := range result.Errors {
			rows = append(rows, []plotpage.Cell{{Text: e.File}, {Text: e.Kind}, {Text: e.Reason}})
		}

		table, err := plotpage.Table([]string{"File", "Kind", "Reason"}, rows)
		if err != nil {
			return nil, err
		}

		sections = append(sections, plotpage.Section{
			Title:    "Errors",
			Subtitle: "Files and functions left out of the metrics",
			Content:  table,
		})
	}

	return sections, nil
}

func tierClass(t risk.Tier) string {
	return "tier-" + t.String()
}
