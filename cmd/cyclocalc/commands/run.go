package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/common/terminal"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/config"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/discovery"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/observability"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/render"
)

// RunCommand holds the flags of the run command.
type RunCommand struct {
	analysisFlags

	format  string
	minCC   int
	top     int
	exclude []string
	noColor bool
	silent  bool
}

// NewRunCommand creates the run command, which analyzes files on disk.
func NewRunCommand() *cobra.Command {
	rc := &RunCommand{}

	cmd := &cobra.Command{
		Use:     "run [paths...]",
		Aliases: []string{"analyze"},
		Short:   "Measure and classify Python files",
		Long: `Measure cyclomatic complexity, length and nesting of every Python function
and the quality metrics of every file, classify them into risk tiers and
report the smells.

Files that cannot be read or parsed are listed in the report and do not
fail the run. An invalid configuration does.

Examples:
  cyclocalc run                         # Analyze the current directory
  cyclocalc run src/ --format html -o report.html
  cyclocalc run pkg/ -t 5 --top 20      # Only functions with CC >= 5
  cyclocalc run . --format json -o report.json.lz4`,
		RunE: rc.run,
	}

	rc.register(cmd)

	cmd.Flags().StringVar(&rc.format, flagFormat, config.DefaultFormat, "Output format: text, json, yaml, html")
	cmd.Flags().IntVarP(&rc.minCC, flagMinCC, "t", config.DefaultMinCC, "Hide functions with a lower CC from the report")
	cmd.Flags().IntVar(&rc.top, flagTop, config.DefaultTopN, "Rows in the riskiest functions and files lists (0 = all)")
	cmd.Flags().StringSliceVar(&rc.exclude, flagExclude, nil, "Extra glob patterns of files or directories to skip")
	cmd.Flags().BoolVar(&rc.noColor, flagNoColor, false, "Disable colored text output")
	cmd.Flags().BoolVar(&rc.silent, "silent", false, "Disable progress output")

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := rc.loadConfig(cmd)
	if err != nil {
		return err
	}

	providers, stop, err := startObservability(cfg, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer stop()

	ctx, span := providers.Tracer.Start(cmd.Context(), "cyclocalc.run")
	defer span.End()

	if len(args) == 0 {
		args = []string{"."}
	}

	finder, err := discovery.New(discovery.Options{
		ExcludeDirs:  cfg.Discovery.ExcludeDirs,
		ExcludeFiles: cfg.Discovery.ExcludeFiles,
		SkipVendored: cfg.Discovery.SkipVendored,
	})
	if err != nil {
		return err
	}

	paths, err := finder.Find(args)
	if err != nil {
		return err
	}

	analyzer, err := newAnalyzer(cfg, providers)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	progress := cmd.ErrOrStderr()

	rc.progressf(progress, "analyzing %d files", len(paths))

	result, err := analyzer.Run(ctx, paths)
	if err != nil {
		return fmt.Errorf("analysis aborted: %w", err)
	}

	rc.progressf(progress, "analyzed %d files (%d failed) in %s",
		result.Summary.NumFiles, result.Summary.NumFailed, time.Since(startedAt).Round(time.Millisecond))

	return render.WriteFile(cfg.Output.Path, cmd.OutOrStdout(), result, rc.renderOptions(cfg))
}

// loadConfig applies the run-specific flags on top of the shared ones and
// re-validates the result.
func (rc *RunCommand) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := rc.load(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed(flagFormat) {
		cfg.Output.Format = rc.format
	}

	if flags.Changed(flagMinCC) {
		cfg.Analysis.MinCC = rc.minCC
	}

	if flags.Changed(flagTop) {
		cfg.Analysis.TopN = rc.top
	}

	cfg.Discovery.ExcludeDirs = append(cfg.Discovery.ExcludeDirs, rc.exclude...)
	cfg.Discovery.ExcludeFiles = append(cfg.Discovery.ExcludeFiles, rc.exclude...)

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func (rc *RunCommand) renderOptions(cfg *config.Config) render.Options {
	term := terminal.NewConfig()

	return render.Options{
		Format:  cfg.Output.Format,
		TopN:    cfg.Analysis.TopN,
		MinCC:   cfg.Analysis.MinCC,
		NoColor: rc.noColor || term.NoColor || cfg.Output.Path != "" || color.NoColor,
		Width:   term.Width,
	}
}

func (rc *RunCommand) progressf(writer io.Writer, format string, args ...any) {
	if rc.silent {
		return
	}

	_, _ = fmt.Fprintf(writer, "progress: "+format+"\n", args...)
}
