package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/common/terminal"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/report"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
)

// Text layout constants.
const (
	distLabelWidth = 8
	distBarWidth   = 30
	nameWidth      = 60
	pathWidth      = 48
	reasonWidth    = 70
	percent        = 100
)

// Text writes a terminal report: a header, run-level numbers, the CC and LEN
// histograms, then tables of the riskiest functions and files, smells and errors.
func Text(w io.Writer, result report.AnalysisResult, opts Options) error {
	term := terminal.Config{NoColor: opts.NoColor}.WithWidth(opts.Width)

	s := result.Summary

	var b strings.Builder

	b.WriteString(terminal.DrawHeader("CYCLOCALC",
		fmt.Sprintf("%s files  %s functions", humanize.Comma(int64(s.NumFiles)), humanize.Comma(int64(s.NumFunctions))),
		term.Width))
	b.WriteString("\n\n")

	writeSummary(&b, term, result)
	writeHistogram(&b, term, "Cyclomatic complexity", s.CCDistribution, s.NumFunctions)
	writeHistogram(&b, term, "Function length", s.LENDistribution, s.NumFunctions)

	if fns := result.TopFunctions(opts.TopN); len(fns) > 0 {
		writeTitle(&b, term, fmt.Sprintf("Riskiest functions (%d of %d)", len(fns), len(result.Functions)))
		b.WriteString(functionTable(term, fns))
		b.WriteString("\n")
	}

	if files := result.TopFiles(opts.TopN); len(files) > 0 {
		writeTitle(&b, term, fmt.Sprintf("Riskiest files (%d of %d)", len(files), len(result.Files)))
		b.WriteString(fileTable(term, files))
		b.WriteString("\n")
	}

	if len(result.Smells) > 0 {
		writeTitle(&b, term, fmt.Sprintf("Smells (%d)", len(result.Smells)))
		writeSmells(&b, term, result.Smells, opts.TopN)
	}

	if len(result.Errors) > 0 {
		writeTitle(&b, term, fmt.Sprintf("Errors (%d)", len(result.Errors)))
		b.WriteString(errorTable(result.Errors))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write text report: %w", err)
	}

	return nil
}

func writeTitle(b *strings.Builder, term terminal.Config, title string) {
	b.WriteString("\n")
	b.WriteString(term.Colorize(title, terminal.ColorBlue))
	b.WriteString("\n")
	b.WriteString(terminal.DrawSeparator(len(title)))
	b.WriteString("\n")
}

func writeSummary(b *strings.Builder, term terminal.Config, result report.AnalysisResult) {
	s := result.Summary

	fmt.Fprintf(b, "  CC    avg %-6.2f max %d\n", s.CCAvg, s.CCMax)
	fmt.Fprintf(b, "  LEN   avg %-6.2f max %d\n", s.LENAvg, s.LENMax)
	fmt.Fprintf(b, "  NEST  avg %-6.2f max %d\n", s.NESTAvg, s.NESTMax)
	fmt.Fprintf(b, "  Files avg comments %s  docstrings %s  long lines %s  naming %s  unused imports %.2f\n",
		pct(s.FileMetricAvg.CommentRatio), pct(s.FileMetricAvg.DocstringCoverage),
		pct(s.FileMetricAvg.LongLineRatio), pct(s.FileMetricAvg.NamingIssueRatio), s.FileMetricAvg.UnusedImports)
	fmt.Fprintf(b, "  Tiers functions %s  files %s  smells %s\n",
		tierCounts(term, s.FunctionTiers), tierCounts(term, s.FileTiers), tierCounts(term, s.SmellTiers))

	if s.NumFailed > 0 {
		b.WriteString("  ")
		b.WriteString(term.Colorize(
			fmt.Sprintf("%d of %d files could not be analyzed", s.NumFailed, s.NumFiles+s.NumFailed), terminal.ColorRed))
		b.WriteString("\n")
	}
}

func tierCounts(term terminal.Config, c report.TierCounts) string {
	return strings.Join([]string{
		term.Colorize(strconv.Itoa(c.High), terminal.ColorForTier(risk.TierHigh)),
		term.Colorize(strconv.Itoa(c.Medium), terminal.ColorForTier(risk.TierMedium)),
		term.Colorize(strconv.Itoa(c.Low), terminal.ColorForTier(risk.TierLow)),
	}, "/")
}

func writeHistogram(b *strings.Builder, term terminal.Config, title string, buckets []report.Bucket, total int) {
	if total == 0 {
		return
	}

	writeTitle(b, term, title)

	for _, bucket := range buckets {
		b.WriteString("  ")
		b.WriteString(terminal.DrawPercentBar(bucket.Label, bucket.Count, total, distLabelWidth, distBarWidth))
		b.WriteString("\n")
	}
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)

	return tbl
}

func rightAligned(numbers ...int) []table.ColumnConfig {
	configs := make([]table.ColumnConfig, 0, len(numbers))

	for _, n := range numbers {
		configs = append(configs, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}

	return configs
}

func functionTable(term terminal.Config, fns []report.FunctionResult) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"#", "Function", "Line", "CC", "LEN", "NEST", "Tier"})
	tbl.SetColumnConfigs(rightAligned(1, 3, 4, 5, 6))

	for i, fn := range fns {
		tbl.AppendRow(table.Row{
			i + 1, terminal.TruncateLeft(fn.ID, nameWidth), fn.Line, fn.CC, fn.LEN, fn.NEST, term.Tier(fn.Tier),
		})
	}

	return tbl.Render()
}

func fileTable(term terminal.Config, files []report.FileResult) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"File", "Lines", "Funcs", "CC avg", "CC max", "Comments", "Docs", "Smells", "Tier"})
	tbl.SetColumnConfigs(rightAligned(2, 3, 4, 5, 6, 7, 8))

	for _, f := range files {
		tbl.AppendRow(table.Row{
			terminal.TruncateLeft(f.Path, pathWidth),
			humanize.Comma(int64(f.Lines)),
			f.FunctionCount,
			fmt.Sprintf("%.2f", f.CCAvg),
			f.CCMax,
			pct(f.CommentRatio),
			pct(f.DocstringCoverage),
			f.SmellCount,
			term.Tier(f.Tier),
		})
	}

	return tbl.Render()
}

func writeSmells(b *strings.Builder, term terminal.Config, smells []risk.Smell, limit int) {
	shown := smells
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	for _, smell := range shown {
		tier := term.Colorize(terminal.PadRight(smell.Tier.String(), len("medium")), terminal.ColorForTier(smell.Tier))
		fmt.Fprintf(b, "  %s %s %s: %s %g (threshold %g)\n",
			tier, smell.SubjectKind, smell.Subject, smell.Metric, smell.Observed, smell.Threshold)
	}

	if rest := len(smells) - len(shown); rest > 0 {
		fmt.Fprintf(b, "  ... and %d more\n", rest)
	}
}

func errorTable(entries []report.ErrorEntry) string {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"File", "Kind", "Reason"})

	for _, e := range entries {
		tbl.AppendRow(table.Row{terminal.TruncateLeft(e.File, pathWidth), e.Kind, truncate(e.Reason, reasonWidth)})
	}

	return tbl.Render()
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}

	return string(runes[:width-len(terminal.Ellipsis)]) + terminal.Ellipsis
}

func pct(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*percent)
}
