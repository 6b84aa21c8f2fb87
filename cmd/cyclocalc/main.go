// Package main provides the entry point for the cyclocalc CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/cyclocalc/cmd/cyclocalc/commands"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCommand().ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cyclocalc",
		Short: "Cyclomatic complexity and risk analysis for Python",
		Long: `cyclocalc measures Python functions and files without running them and
classifies each into a low, medium or high risk tier.

Commands:
  run            Analyze files and render a report
  analyze-trees  Analyze trees built by an external front end
  tree           Print the syntax tree of one file
  validate       Check a JSON report against the result schema
  diff           Compare two JSON reports
  mcp            Serve the analyzer to AI agents over MCP`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewAnalyzeTreesCommand())
	rootCmd.AddCommand(commands.NewTreeCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewDiffCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cyclocalc %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
