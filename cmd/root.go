// Package cmd implements the CLI commands for pagemerge using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pagemerge/config"
)

// Shared state populated by the root command before any subcommand runs.
var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pagemerge",
	Short: "pagemerge — fuse semantic blocks and page-tagged extraction into per-page documents",
	Long: `pagemerge aligns the blocks of a semantic document export with the
page-tagged paragraphs and images of a low-level extraction cache, separates
tables from prose and writes one canonical document per page.

Usage:
  pagemerge merge --blocks <file> --extraction <cache.json> [flags]
  pagemerge batch <dir> [flags]
  pagemerge jobs [--status S]
  pagemerge init-db [--drop]`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// setup loads configuration from the environment and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	cfg = config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	logger = l
	slog.SetDefault(logger)
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
