package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/parser"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/syntax"
)

// ErrUnsupportedFileType is returned for files the Python front end does not handle.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// NewTreeCommand creates the tree command, which prints the analyzed tree of one file.
func NewTreeCommand() *cobra.Command {
	var (
		output string
		kind   string
	)

	cmd := &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the syntax tree the analyzer sees for a file",
		Long: `Parse a Python file and print the tree the metric extractors walk, as JSON.

Examples:
  cyclocalc tree pkg/app.py               # Whole module
  cyclocalc tree pkg/app.py --kind Function`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var writer io.Writer = cmd.OutOrStdout()

			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer file.Close()

				writer = file
			}

			return runTree(cmd, args[0], kind, writer)
		},
	}

	cmd.Flags().StringVarP(&output, flagOutput, "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&kind, "kind", "", "Print only nodes of this kind (e.g. Function, If, BoolOp)")

	return cmd
}

func runTree(cmd *cobra.Command, path, kind string, writer io.Writer) error {
	if !parser.Supports(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFileType, path)
	}

	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	root, err := parser.New().Parse(cmd.Context(), path, code)
	if err != nil {
		return fmt.Errorf("parse error in %s: %w", path, err)
	}

	var value any = root
	if kind != "" {
		value = syntax.Collect(root, syntax.ParseKind(kind))
	}

	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")

	err = enc.Encode(value)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
