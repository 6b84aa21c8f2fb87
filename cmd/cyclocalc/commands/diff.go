package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/render"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/report"
)

// diffArgCount is the number of arguments expected by the diff command.
const diffArgCount = 2

// diffWidth keeps the text form stable across terminals.
const diffWidth = 120

// NewDiffCommand creates the diff command.
func NewDiffCommand() *cobra.Command {
	var (
		format  string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "diff <old.json> <new.json>",
		Short: "Compare two JSON reports",
		Long: `Compare two JSON reports line by line.

Both reports are rendered in a canonical form first, so the diff shows
changed metrics, tiers and smells instead of JSON layout noise.

Examples:
  cyclocalc diff before.json after.json
  cyclocalc diff -f json before.json.lz4 after.json.lz4`,
		Args: cobra.ExactArgs(diffArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.OutOrStdout(), args[0], args[1], format, noColor)
		},
	}

	cmd.Flags().StringVarP(&format, flagFormat, "f", render.FormatText, "Canonical form to compare: text, json")
	cmd.Flags().BoolVar(&noColor, flagNoColor, false, "Disable colored output")

	return cmd
}

func runDiff(writer io.Writer, oldPath, newPath, format string, noColor bool) error {
	before, err := canonicalReport(oldPath, format)
	if err != nil {
		return err
	}

	after, err := canonicalReport(newPath, format)
	if err != nil {
		return err
	}

	fmt.Fprintf(writer, "--- %s\n+++ %s\n", oldPath, newPath)

	changed := printLineDiff(writer, diffLines(before, after), noColor)
	if changed == 0 {
		fmt.Fprintln(writer, "no differences")
	}

	return nil
}

// canonicalReport loads a JSON report and renders it in the given format.
func canonicalReport(path, format string) (string, error) {
	data, err := render.ReadJSON(path)
	if err != nil {
		return "", err
	}

	var result report.AnalysisResult

	err = json.Unmarshal(data, &result)
	if err != nil {
		return "", fmt.Errorf("decode report %s: %w", path, err)
	}

	var b strings.Builder

	err = render.Write(&b, result, render.Options{Format: format, NoColor: true, Width: diffWidth})
	if err != nil {
		return "", err
	}

	return b.String(), nil
}

// diffLines computes a line-level diff of two texts.
func diffLines(before, after string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()

	beforeRunes, afterRunes, lines := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffMainRunes(beforeRunes, afterRunes, false)

	return dmp.DiffCharsToLines(diffs, lines)
}

// printLineDiff writes deleted and inserted lines with -/+ prefixes and
// returns how many lines changed.
func printLineDiff(writer io.Writer, diffs []diffmatchpatch.Diff, noColor bool) int {
	green, red := color.New(color.FgGreen), color.New(color.FgRed)
	if noColor {
		green.DisableColor()
		red.DisableColor()
	}

	changed := 0

	for _, d := range diffs {
		var (
			prefix string
			paint  *color.Color
		)

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix, paint = "-", red
		case diffmatchpatch.DiffInsert:
			prefix, paint = "+", green
		case diffmatchpatch.DiffEqual:
			continue
		}

		for line := range strings.Lines(d.Text) {
			paint.Fprintf(writer, "%s%s\n", prefix, strings.TrimSuffix(line, "\n"))

			changed++
		}
	}

	return changed
}
