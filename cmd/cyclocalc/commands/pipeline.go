// Package commands implements CLI command handlers for cyclocalc.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/analyze"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/quality"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/config"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/observability"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/version"
)

// Flag names shared by the analysis commands.
const (
	flagConfig        = "config"
	flagFormat        = "format"
	flagOutput        = "output"
	flagMinCC         = "min-cc"
	flagTop           = "top"
	flagWorkers       = "workers"
	flagLongLineLimit = "long-line-limit"
	flagExclude       = "exclude"
	flagNoColor       = "no-color"
)

// analysisFlags are the overrides every analysis command accepts on top of
// the config file. Only flags the user set replace configured values.
type analysisFlags struct {
	configPath    string
	output        string
	workers       int
	longLineLimit int
}

func (af *analysisFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVar(&af.configPath, flagConfig, "", "Config file (default: .cyclocalc.yaml in . or $HOME)")
	flags.StringVarP(&af.output, flagOutput, "o", "", "Write the report to a file (suffix .lz4 compresses it)")
	flags.IntVar(&af.workers, flagWorkers, config.DefaultWorkers, "Number of parallel workers (0 = use CPU count)")
	flags.IntVar(&af.longLineLimit, flagLongLineLimit, config.DefaultLongLineLimit,
		"Line length above which a line counts as long")
}

// load reads the configuration and applies the flags that were set.
func (af *analysisFlags) load(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	cfg, err := config.LoadConfig(af.configPath)
	if err != nil {
		return nil, err
	}

	if flags.Changed(flagOutput) {
		cfg.Output.Path = af.output
	}

	if flags.Changed(flagWorkers) {
		cfg.Analysis.Workers = af.workers
	}

	if flags.Changed(flagLongLineLimit) {
		cfg.Analysis.LongLineLimit = af.longLineLimit
	}

	return cfg, nil
}

// startObservability initializes telemetry for one command invocation. The
// returned stop function flushes exporters and logs a failed flush.
func startObservability(cfg *config.Config, mode observability.AppMode) (observability.Providers, func(), error) {
	providers, err := observability.Init(cfg.ObservabilityConfig(mode, version.Version))
	if err != nil {
		return observability.Providers{}, nil, fmt.Errorf("init observability: %w", err)
	}

	stop := func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}

	return providers, stop, nil
}

// newAnalyzer builds the per-file pipeline from a validated configuration.
func newAnalyzer(cfg *config.Config, providers observability.Providers) (*analyze.Analyzer, error) {
	classifier, err := risk.NewClassifier(cfg.Policy())
	if err != nil {
		return nil, err
	}

	maxSize, err := cfg.MaxFileSizeBytes()
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewAnalysisMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("create analysis metrics: %w", err)
	}

	return analyze.New(classifier,
		analyze.WithWorkers(cfg.Analysis.Workers),
		analyze.WithMaxFileSize(maxSize),
		analyze.WithQualityOptions(quality.Options{LongLineLimit: cfg.Analysis.LongLineLimit}),
		analyze.WithLogger(providers.Logger),
		analyze.WithMetrics(metrics),
		analyze.WithTracer(providers.Tracer),
	), nil
}
