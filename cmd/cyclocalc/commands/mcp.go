package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/config"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/mcp"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/observability"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes cyclocalc as tools that AI agents can discover and invoke:
  - cyclocalc_analyze: Measure and classify inline Python code
  - cyclocalc_tree: Parse inline Python code into the analyzed syntax tree

Thresholds come from the same config file and CYCLOCALC_* variables as "run".
Logs are written to stderr as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			cfg.Observability.LogJSON = true
			if debug {
				cfg.Observability.LogLevel = "debug"
			}

			providers, stop, err := startObservability(cfg, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer stop()

			analyzer, err := newAnalyzer(cfg, providers)
			if err != nil {
				return err
			}

			tools, err := observability.NewToolMetrics(providers.Meter)
			if err != nil {
				return fmt.Errorf("create tool metrics: %w", err)
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Analyzer: analyzer,
				Version:  version.Version,
				Logger:   providers.Logger,
				Metrics:  tools,
				Tracer:   providers.Tracer,
			})

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&configPath, flagConfig, "", "Config file (default: .cyclocalc.yaml in . or $HOME)")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}
