// Package align assigns page numbers to semantic blocks.
//
// Each block is matched against every page-tagged paragraph and takes the
// page of the most similar one. The raw candidates are then smoothed in a
// single left-to-right pass so that consecutive blocks never jump by more
// than one page.
package align

import (
	"github.com/gaurav-prasanna/pagemerge/core"
	"github.com/gaurav-prasanna/pagemerge/core/similarity"
)

// DefaultPage is assigned when no paragraph matches a block.
const DefaultPage = 1

// Aligner maps semantic blocks onto pages.
type Aligner struct {
	Scorer core.Scorer
	// Window limits scoring to paragraphs within Window pages of the
	// previous block's page. Zero scans every paragraph.
	Window int
}

// New creates an Aligner. A nil scorer falls back to the sequence ratio.
func New(scorer core.Scorer, window int) *Aligner {
	if scorer == nil {
		scorer = similarity.Sequence{}
	}
	if window < 0 {
		window = 0
	}
	return &Aligner{Scorer: scorer, Window: window}
}

// Result is the outcome of aligning one document.
type Result struct {
	// Blocks holds every block in document order with its pages.
	Blocks []core.AlignedBlock
	// Pages maps a page number to its block texts in document order.
	Pages map[int][]string
}

// Align assigns a smoothed page to every block.
func (a *Aligner) Align(blocks []core.SemanticBlock, paragraphs []core.Paragraph) Result {
	aligned := make([]core.AlignedBlock, len(blocks))
	pages := make(map[int][]string)

	prev := 0
	for i, blk := range blocks {
		candidate := a.candidate(blk, paragraphs, prev, i > 0)
		page := candidate
		if i > 0 {
			page = smoothStep(prev, candidate)
		}
		aligned[i] = core.AlignedBlock{Text: blk, Candidate: candidate, PageNum: page}
		pages[page] = append(pages[page], blk)
		prev = page
	}

	return Result{Blocks: aligned, Pages: pages}
}

// candidate returns the page of the best matching paragraph.
func (a *Aligner) candidate(block string, paragraphs []core.Paragraph, prev int, hasPrev bool) int {
	if a.Window > 0 && hasPrev {
		if page, ok := bestPage(a.Scorer, block, paragraphs, func(p core.Paragraph) bool {
			return abs(p.PageNum-prev) <= a.Window
		}); ok {
			return page
		}
	}
	page, _ := bestPage(a.Scorer, block, paragraphs, nil)
	return page
}

// BestPage returns the page of the paragraph most similar to block.
// Ties go to the earliest paragraph. With no paragraphs, or when nothing
// scores above zero, the result is DefaultPage.
func BestPage(scorer core.Scorer, block string, paragraphs []core.Paragraph) int {
	page, _ := bestPage(scorer, block, paragraphs, nil)
	return page
}

// bestPage scans the paragraphs accepted by keep. The bool reports whether
// any paragraph was considered at all.
func bestPage(scorer core.Scorer, block string, paragraphs []core.Paragraph, keep func(core.Paragraph) bool) (int, bool) {
	bestPage, bestScore := DefaultPage, 0.0
	considered := false
	for _, p := range paragraphs {
		if keep != nil && !keep(p) {
			continue
		}
		considered = true
		if score := scorer.Ratio(block, p.Text); score > bestScore {
			bestPage, bestScore = p.PageNum, score
		}
	}
	return bestPage, considered
}

// Smooth clamps a sequence of raw candidates so that no two neighbours
// differ by more than one page. A jump in either direction becomes
// previous+1. The first candidate is kept as is.
func Smooth(candidates []int) []int {
	out := make([]int, len(candidates))
	for i, p := range candidates {
		if i == 0 {
			out[i] = p
			continue
		}
		out[i] = smoothStep(out[i-1], p)
	}
	return out
}

func smoothStep(prev, candidate int) int {
	if abs(candidate-prev) > 1 {
		return prev + 1
	}
	return candidate
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
