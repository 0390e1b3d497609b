// Package cmd — batch command.
// Merges every document directory below a root concurrently. One failing
// document is reported and counted; the others still run.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gaurav-prasanna/pagemerge/core/validate"
	"github.com/gaurav-prasanna/pagemerge/pipeline"
)

// Input file names looked up in each document directory.
var (
	blocksFiles    = []string{"blocks.md", "blocks.html", "blocks.htm"}
	extractionFile = "extraction.json"
)

var (
	flagConcurrency int

	batchFlags pipelineFlags
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Merge every document directory below <dir>",
	Long: `Batch looks for subdirectories of <dir> holding a semantic export
(blocks.md or blocks.html) and an extraction cache (extraction.json) and
merges them concurrently. Each document is named after its directory.

Examples:
  pagemerge batch ./exports
  pagemerge batch ./exports --concurrency 8 --pdf --output_dir ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Documents merged in parallel (default: $PAGEMERGE_CONCURRENCY)")
	batchFlags.bind(batchCmd.Flags())
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	requests, err := discoverDocuments(args[0])
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return fmt.Errorf("no document directories found in %s", args[0])
	}

	limit := cfg.Concurrency
	if cmd.Flags().Changed("concurrency") {
		limit = flagConcurrency
	}
	if limit < 1 {
		return fmt.Errorf("--concurrency must be >= 1 (got %d)", limit)
	}

	// Compile the cache schema once before the workers race for it.
	if err := validate.Warmup(); err != nil {
		return fmt.Errorf("compiling extraction schema: %w", err)
	}

	svc, closeFn, err := newService(ctx, &batchFlags)
	if err != nil {
		return err
	}
	defer closeFn()

	fmt.Fprintf(out, "Found %d documents to merge\n", len(requests))

	var (
		mu       sync.Mutex
		errCount int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, req := range requests {
		req.Force = batchFlags.force
		prefix := fmt.Sprintf("[%d/%d] ", i+1, len(requests))
		g.Go(func() error {
			report, err := svc.Run(gctx, req)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				fmt.Fprintf(errOut, "%s✗ %s: %v\n", prefix, req.Name, err)
				errCount++
				return nil
			}
			printReport(out, prefix, report)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if errCount > 0 {
		return fmt.Errorf("%d/%d documents failed", errCount, len(requests))
	}
	return nil
}

// discoverDocuments returns one request per subdirectory of root that holds
// both inputs, sorted by directory name.
func discoverDocuments(root string) ([]pipeline.Request, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	var requests []pipeline.Request
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())

		cache := filepath.Join(dir, extractionFile)
		if !fileExists(cache) {
			continue
		}
		for _, name := range blocksFiles {
			if blocks := filepath.Join(dir, name); fileExists(blocks) {
				requests = append(requests, pipeline.Request{
					Name:           entry.Name(),
					BlocksPath:     blocks,
					ExtractionPath: cache,
				})
				break
			}
		}
	}

	sort.Slice(requests, func(i, j int) bool { return requests[i].Name < requests[j].Name })
	return requests, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
