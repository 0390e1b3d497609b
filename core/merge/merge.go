// Package merge fuses semantic blocks with page-tagged paragraphs and images
// into structured pages.
//
// Merge is a pure function of its inputs: it performs no I/O, keeps no state
// between calls, and may run concurrently for independent documents.
package merge

import (
	"strings"

	"github.com/gaurav-prasanna/pagemerge/core"
	"github.com/gaurav-prasanna/pagemerge/core/align"
	"github.com/gaurav-prasanna/pagemerge/core/assemble"
	"github.com/gaurav-prasanna/pagemerge/core/validate"
)

// Options tune page alignment. The zero value is the default full scan with
// the sequence ratio.
type Options struct {
	Scorer core.Scorer
	Window int
}

// Result carries the structured pages and the per-block alignment trace.
type Result struct {
	Pages  []core.StructuredPage
	Blocks []core.AlignedBlock
}

// Merge validates the inputs, aligns blocks to pages and assembles the
// structured pages.
func Merge(blocks []core.SemanticBlock, paragraphs []core.Paragraph, images []core.ImageRef, opts Options) (*Result, error) {
	if err := validate.Inputs(paragraphs, images); err != nil {
		return nil, err
	}

	aligned := align.New(opts.Scorer, opts.Window).Align(CleanBlocks(blocks), paragraphs)
	pages := assemble.Pages(aligned.Pages, images)

	return &Result{Pages: pages, Blocks: aligned.Blocks}, nil
}

// CleanBlocks trims every block and drops the blank ones.
func CleanBlocks(blocks []core.SemanticBlock) []core.SemanticBlock {
	out := make([]core.SemanticBlock, 0, len(blocks))
	for _, b := range blocks {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
