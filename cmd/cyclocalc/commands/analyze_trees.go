package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/analyze"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/config"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/observability"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/render"
)

// ErrBadInput is returned when the analyze-trees input stream cannot be decoded.
var ErrBadInput = errors.New("invalid input record")

// NewAnalyzeTreesCommand creates the analyze-trees command, which analyzes
// trees built by an external front end.
func NewAnalyzeTreesCommand() *cobra.Command {
	var (
		af     analysisFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "analyze-trees",
		Short: "Analyze pre-parsed trees read from stdin",
		Long: `Read one JSON object per line from stdin and analyze it:

  {"path": "pkg/a.py", "source": "<file text>", "tree": {<module node>}}

The tree uses the cyclocalc node format printed by "cyclocalc tree". When
"tree" is omitted, the source is parsed. The report is written as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := af.load(cmd)
			if err != nil {
				return err
			}

			cfg.Output.Format = format

			err = cfg.Validate()
			if err != nil {
				return err
			}

			inputs, err := decodeInputs(cmd.InOrStdin())
			if err != nil {
				return err
			}

			providers, stop, err := startObservability(cfg, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer stop()

			analyzer, err := newAnalyzer(cfg, providers)
			if err != nil {
				return err
			}

			result, err := analyzer.RunInputs(cmd.Context(), inputs)
			if err != nil {
				return fmt.Errorf("analysis aborted: %w", err)
			}

			return render.WriteFile(cfg.Output.Path, cmd.OutOrStdout(), result, render.Options{
				Format:  cfg.Output.Format,
				TopN:    cfg.Analysis.TopN,
				MinCC:   cfg.Analysis.MinCC,
				NoColor: true,
				Source:  inputSource(inputs),
			})
		},
	}

	af.register(cmd)
	cmd.Flags().StringVar(&format, flagFormat, config.FormatJSON, "Output format: text, json, yaml, html")

	return cmd
}

// decodeInputs reads a stream of concatenated or newline-separated JSON records.
func decodeInputs(r io.Reader) ([]analyze.Input, error) {
	dec := json.NewDecoder(r)

	var inputs []analyze.Input

	for {
		var in analyze.Input

		err := dec.Decode(&in)
		if errors.Is(err, io.EOF) {
			return inputs, nil
		}

		if err != nil {
			return nil, fmt.Errorf("%w %d: %w", ErrBadInput, len(inputs)+1, err)
		}

		if in.Path == "" {
			return nil, fmt.Errorf("%w %d: missing path", ErrBadInput, len(inputs)+1)
		}

		inputs = append(inputs, in)
	}
}

// inputSource serves HTML source previews from the decoded records.
func inputSource(inputs []analyze.Input) render.SourceFunc {
	sources := make(map[string]string, len(inputs))
	for _, in := range inputs {
		sources[in.Path] = in.Source
	}

	return func(path string) ([]byte, error) {
		src, ok := sources[path]
		if !ok {
			return nil, fmt.Errorf("%w: %s", fs.ErrNotExist, path)
		}

		return []byte(src), nil
	}
}
