package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/render"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/schema"
)

// ErrReportInvalid is returned when a report does not match the result schema.
var ErrReportInvalid = errors.New("report does not match the result schema")

const stdinArg = "-"

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "validate <report.json|->",
		Short: "Validate a JSON report against the result schema",
		Long: `Validate a JSON report written by "cyclocalc run --format json" against the
result schema embedded in the binary. Reports ending in .lz4 are decompressed.

Examples:
  cyclocalc validate report.json
  cyclocalc validate report.json.lz4
  cyclocalc run . --format json | cyclocalc validate -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readReport(cmd, args[0])
			if err != nil {
				return err
			}

			return runValidate(cmd.OutOrStdout(), args[0], data, noColor)
		},
	}

	cmd.Flags().BoolVar(&noColor, flagNoColor, false, "Disable colored output")

	return cmd
}

func readReport(cmd *cobra.Command, path string) ([]byte, error) {
	if path != stdinArg {
		return render.ReadJSON(path)
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read report from stdin: %w", err)
	}

	return data, nil
}

func runValidate(writer io.Writer, label string, data []byte, noColor bool) error {
	result, err := schema.Validate(data)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}

	green, red := color.New(color.FgGreen), color.New(color.FgRed)
	if noColor {
		green.DisableColor()
		red.DisableColor()
	}

	if result.Valid() {
		green.Fprintf(writer, "Report is valid (%s)\n", label)

		return nil
	}

	red.Fprintf(writer, "Report validation failed (%s)\n", label)
	fmt.Fprintf(writer, "\nErrors:\n")

	for _, v := range result.Violations {
		red.Fprintf(writer, "  - %s\n", v)
	}

	return fmt.Errorf("%w: %d violations", ErrReportInvalid, len(result.Violations))
}
