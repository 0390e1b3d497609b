// Package pipeline runs one document through the full merge:
// load exports → validate → align → assemble → render → write, recording
// the job in the status store when one is configured.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gaurav-prasanna/pagemerge/core"
	"github.com/gaurav-prasanna/pagemerge/core/ingest"
	"github.com/gaurav-prasanna/pagemerge/core/merge"
	"github.com/gaurav-prasanna/pagemerge/core/output"
	"github.com/gaurav-prasanna/pagemerge/jobs"
)

// Request names the inputs of one document.
type Request struct {
	Name           string
	BlocksPath     string
	ExtractionPath string
	// Force re-merges a document whose inputs were already processed.
	Force bool
}

// File is one written output.
type File struct {
	Path string
	Size int64
}

// Report describes the outcome of a Run.
type Report struct {
	Name    string
	JobID   string
	Skipped bool
	// InProgress marks a skip caused by another run still processing the
	// same inputs.
	InProgress bool
	Pages      int
	Blocks     int
	Files      []File
	Elapsed    time.Duration
}

// Service wires the pipeline stages together.
type Service struct {
	Loader    *ingest.Loader
	Writer    *output.Writer
	Renderers []core.Renderer
	Options   merge.Options
	// Store is optional; nil disables deduplication and status tracking.
	Store  *jobs.Store
	Logger *slog.Logger
}

// New creates a Service. A nil logger falls back to slog.Default().
func New(loader *ingest.Loader, writer *output.Writer, renderers []core.Renderer, opts merge.Options, store *jobs.Store, logger *slog.Logger) *Service {
	if loader == nil {
		loader = ingest.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		Loader:    loader,
		Writer:    writer,
		Renderers: renderers,
		Options:   opts,
		Store:     store,
		Logger:    logger,
	}
}

// Run merges one document. When the inputs match a job that completed or is
// still processing and Force is unset, nothing is written and the report is
// marked Skipped.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	if req.Name == "" {
		req.Name = output.DocumentName(req.BlocksPath)
	}
	start := time.Now()
	logger := s.Logger.With("name", req.Name)

	// 1. Read both exports
	in, err := s.read(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	if s.Store == nil {
		report, err := s.process(ctx, req, in)
		if err != nil {
			return nil, err
		}
		report.Elapsed = time.Since(start)
		logger.Info("document merged", "pages", report.Pages, "blocks", report.Blocks, "elapsed_ms", report.Elapsed.Milliseconds())
		return report, nil
	}

	hash := jobs.Hash(in.blocks.Data, in.cache)
	job, err := s.Store.Begin(ctx, req.Name, hash, req.BlocksPath, req.ExtractionPath, req.Force)
	switch {
	case errors.Is(err, jobs.ErrDuplicate):
		logger.Info("document already processed", "job_id", job.ID)
		return &Report{Name: req.Name, JobID: job.ID, Skipped: true, Pages: job.Pages}, nil
	case errors.Is(err, jobs.ErrInProgress):
		logger.Info("document is being processed", "job_id", job.ID, "by", job.Name)
		return &Report{Name: req.Name, JobID: job.ID, Skipped: true, InProgress: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recording job: %w", err)
	}

	report, err := s.process(ctx, req, in)
	if err != nil {
		if ferr := s.Store.Fail(ctx, job.ID, err); ferr != nil {
			logger.Error("recording failure", "job_id", job.ID, "error", ferr)
		}
		return nil, err
	}
	report.JobID = job.ID
	report.Elapsed = time.Since(start)

	if err := s.Store.Complete(ctx, job.ID, outputsOf(report)); err != nil {
		return nil, fmt.Errorf("recording completion: %w", err)
	}
	logger.Info("document merged", "job_id", job.ID, "pages", report.Pages, "blocks", report.Blocks, "elapsed_ms", report.Elapsed.Milliseconds())
	return report, nil
}

// inputs are the raw bytes of one document's exports.
type inputs struct {
	blocks *ingest.Source
	cache  []byte
}

func (s *Service) read(ctx context.Context, req Request) (*inputs, error) {
	src, err := s.Loader.ReadBlocks(ctx, req.BlocksPath)
	if err != nil {
		return nil, err
	}
	cache, err := os.ReadFile(req.ExtractionPath)
	if err != nil {
		return nil, fmt.Errorf("reading extraction %s: %w", req.ExtractionPath, err)
	}
	return &inputs{blocks: src, cache: cache}, nil
}

func (s *Service) process(ctx context.Context, req Request, in *inputs) (*Report, error) {
	// 2. Decode and validate
	blocks, err := s.Loader.Blocks(in.blocks)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	ex, err := ingest.DecodeExtraction(in.cache)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.ExtractionPath, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Merge
	result, err := merge.Merge(blocks, ex.Paragraphs, ex.Images, s.Options)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	s.Logger.Debug("blocks aligned", "name", req.Name, "blocks", len(result.Blocks), "paragraphs", len(ex.Paragraphs), "images", len(ex.Images))

	// 4. Render and write every selected format
	report := &Report{Name: req.Name, Pages: len(result.Pages), Blocks: len(result.Blocks)}
	for _, r := range s.Renderers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := r.Render(result.Pages)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", r.Extension(), err)
		}
		path, err := s.Writer.Write(req.Name, output.FileName(req.Name, r.Extension()), data)
		if err != nil {
			return nil, err
		}
		report.Files = append(report.Files, File{Path: path, Size: int64(len(data))})
	}
	return report, nil
}

func outputsOf(r *Report) jobs.Outputs {
	out := jobs.Outputs{Pages: r.Pages}
	for _, f := range r.Files {
		switch {
		case strings.HasSuffix(f.Path, output.PagesFile):
			out.JSONPath = f.Path
		case strings.HasSuffix(f.Path, ".md"):
			out.MarkdownPath = f.Path
		}
	}
	return out
}
