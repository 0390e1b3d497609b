// Package cmd — merge command.
// This is the main command that orchestrates the pipeline for one document:
// load → validate → align → assemble → render → write.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/pagemerge/pipeline"
)

var (
	flagBlocks     string
	flagExtraction string
	flagName       string

	mergeFlags pipelineFlags
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge one document's semantic export with its extraction cache",
	Long: `Merge assigns every semantic block a source page, separates tables from
prose, interleaves images by vertical position and writes the structured
pages into <output_dir>/<name>/.

The semantic export is Markdown (blocks separated by blank lines) or HTML,
which is reduced to its main content and converted to Markdown first.

Examples:
  pagemerge merge --blocks report.md --extraction report.json
  pagemerge merge --blocks export.html --extraction cache.json --name q3 --pdf --xlsx
  pagemerge merge --blocks report.md --extraction report.json --scorer levenshtein --window 3`,
	Args: cobra.NoArgs,
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVar(&flagBlocks, "blocks", "", "Semantic export (.md or .html)")
	mergeCmd.Flags().StringVar(&flagExtraction, "extraction", "", "Extraction cache JSON")
	mergeCmd.Flags().StringVar(&flagName, "name", "", "Document name (default: derived from --blocks)")
	mergeCmd.MarkFlagRequired("blocks")
	mergeCmd.MarkFlagRequired("extraction")

	mergeFlags.bind(mergeCmd.Flags())
}

func runMerge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, closeFn, err := newService(ctx, &mergeFlags)
	if err != nil {
		return err
	}
	defer closeFn()

	report, err := svc.Run(ctx, pipeline.Request{
		Name:           flagName,
		BlocksPath:     flagBlocks,
		ExtractionPath: flagExtraction,
		Force:          mergeFlags.force,
	})
	if err != nil {
		return fmt.Errorf("merging %s: %w", flagBlocks, err)
	}

	printReport(cmd.OutOrStdout(), "", report)
	return nil
}
