// Package cmd — shared pipeline wiring.
// Flag binding, renderer selection and service construction used by both
// the merge and batch commands.
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/gaurav-prasanna/pagemerge/core"
	"github.com/gaurav-prasanna/pagemerge/core/ingest"
	"github.com/gaurav-prasanna/pagemerge/core/merge"
	"github.com/gaurav-prasanna/pagemerge/core/output"
	"github.com/gaurav-prasanna/pagemerge/core/render"
	"github.com/gaurav-prasanna/pagemerge/core/similarity"
	"github.com/gaurav-prasanna/pagemerge/jobs"
	"github.com/gaurav-prasanna/pagemerge/pipeline"
)

// pipelineFlags are the flags shared by merge and batch. Values left unset
// on the command line fall back to the environment configuration.
type pipelineFlags struct {
	outputDir string
	imageDir  string
	title     string
	markdown  bool
	json      bool
	pdf       bool
	xlsx      bool
	scorer    string
	window    int
	force     bool

	fs *pflag.FlagSet
}

func (f *pipelineFlags) bind(fs *pflag.FlagSet) {
	f.fs = fs

	// Output format flags (any combination; default: markdown + json).
	fs.BoolVar(&f.markdown, "markdown", false, "Output Markdown")
	fs.BoolVar(&f.json, "json", false, "Output structured pages JSON")
	fs.BoolVar(&f.pdf, "pdf", false, "Output PDF")
	fs.BoolVar(&f.xlsx, "xlsx", false, "Output a workbook of extracted tables")

	// Alignment flags.
	fs.StringVar(&f.scorer, "scorer", similarity.NameSequence, "Similarity scorer: sequence or levenshtein")
	fs.IntVar(&f.window, "window", 0, "Only score paragraphs within this many pages of the previous block (0: all)")

	fs.StringVar(&f.outputDir, "output_dir", "", "Output directory (default: $PAGEMERGE_OUTPUT_DIR or current directory)")
	fs.StringVar(&f.imageDir, "image_dir", "", "Directory relative image paths resolve against for PDF output")
	fs.StringVar(&f.title, "title", "", "Markdown/PDF document title (default: $PAGEMERGE_TITLE)")
	fs.BoolVar(&f.force, "force", false, "Re-merge documents whose inputs were already processed")
}

func (f *pipelineFlags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

// validateFlags checks alignment settings and defaults the output formats.
func (f *pipelineFlags) validateFlags() error {
	if !f.changed("scorer") {
		f.scorer = cfg.Scorer
	}
	if _, err := similarity.New(f.scorer); err != nil {
		return fmt.Errorf("--scorer: %w", err)
	}

	if !f.changed("window") {
		f.window = cfg.PageWindow
	}
	if f.window < 0 {
		return fmt.Errorf("--window must be >= 0 (got %d)", f.window)
	}

	if f.outputDir == "" {
		f.outputDir = cfg.OutputDir
	}
	if f.title == "" {
		f.title = cfg.Title
	}

	// The original pipeline always wrote both.
	if !f.markdown && !f.json && !f.pdf && !f.xlsx {
		f.markdown, f.json = true, true
	}
	return nil
}

// selectRenderers creates the Renderers chosen by the flags.
func (f *pipelineFlags) selectRenderers() []core.Renderer {
	var renderers []core.Renderer
	if f.markdown {
		renderers = append(renderers, render.NewMarkdownRenderer(f.title))
	}
	if f.json {
		renderers = append(renderers, render.NewJSONRenderer())
	}
	if f.pdf {
		renderers = append(renderers, render.NewPDFRenderer(f.title, f.imageDir))
	}
	if f.xlsx {
		renderers = append(renderers, render.NewXLSXRenderer())
	}
	return renderers
}

func (f *pipelineFlags) options() (merge.Options, error) {
	scorer, err := similarity.New(f.scorer)
	if err != nil {
		return merge.Options{}, err
	}
	return merge.Options{Scorer: scorer, Window: f.window}, nil
}

// newService builds the pipeline service. The returned close function
// releases the job store, if one was opened.
func newService(ctx context.Context, f *pipelineFlags) (*pipeline.Service, func(), error) {
	if err := f.validateFlags(); err != nil {
		return nil, nil, err
	}
	opts, err := f.options()
	if err != nil {
		return nil, nil, err
	}

	writer, err := output.New(f.outputDir)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing output writer: %w", err)
	}

	var store *jobs.Store
	closeFn := func() {}
	if cfg.TrackJobs {
		store, err = openStore(ctx)
		if err != nil {
			return nil, nil, err
		}
		closeFn = func() { store.Close() }
	}

	svc := pipeline.New(ingest.New(), writer, f.selectRenderers(), opts, store, logger)
	return svc, closeFn, nil
}

// openStore opens the configured job store and makes sure its table exists.
func openStore(ctx context.Context) (*jobs.Store, error) {
	store, err := jobs.Open(ctx, cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("opening job store: %w", err)
	}
	if err := store.Init(ctx, false); err != nil {
		store.Close()
		return nil, fmt.Errorf("initializing job store: %w", err)
	}
	return store, nil
}

// printReport writes the user-facing summary of one document.
func printReport(w io.Writer, prefix string, report *pipeline.Report) {
	if report.InProgress {
		fmt.Fprintf(w, "%s↷ Skipped %s: same inputs are being merged (job %s)\n", prefix, report.Name, report.JobID)
		return
	}
	if report.Skipped {
		fmt.Fprintf(w, "%s↷ Skipped %s: already processed (job %s, use --force to re-merge)\n", prefix, report.Name, report.JobID)
		return
	}
	for _, file := range report.Files {
		fmt.Fprintf(w, "%s✓ Written: %s (%s)\n", prefix, file.Path, humanize.Bytes(uint64(file.Size)))
	}
}
