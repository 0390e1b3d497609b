// Package assemble builds the canonical per-page records from aligned prose
// and page-tagged images.
package assemble

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gaurav-prasanna/pagemerge/core"
	"github.com/gaurav-prasanna/pagemerge/core/tables"
)

// blockSeparator joins a page's blocks before table extraction.
const blockSeparator = "\n\n"

// Pages assembles one StructuredPage per page referenced by any block or
// image, in ascending page order.
func Pages(pageBlocks map[int][]string, images []core.ImageRef) []core.StructuredPage {
	byPage := imagesByPage(images)

	out := make([]core.StructuredPage, 0, len(pageBlocks)+len(byPage))
	for _, page := range pageNumbers(pageBlocks, byPage) {
		text := strings.Join(pageBlocks[page], blockSeparator)
		tbls, prose := tables.Extract(page, text)

		out = append(out, core.StructuredPage{
			Page:    page,
			Content: strings.TrimSpace(prose),
			Images:  imageRecords(page, byPage[page]),
			Tables:  tbls,
		})
	}
	return out
}

// ImageID formats the deterministic id of the n-th image on a page.
func ImageID(page, ordinal int) string {
	return fmt.Sprintf("img_%d_%d", page, ordinal)
}

// NormalizeURL rewrites path separators to forward slashes.
func NormalizeURL(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

func imagesByPage(images []core.ImageRef) map[int][]core.ImageRef {
	byPage := make(map[int][]core.ImageRef)
	for _, img := range images {
		byPage[img.PageNum] = append(byPage[img.PageNum], img)
	}
	return byPage
}

// pageNumbers returns the sorted union of page keys.
func pageNumbers(pageBlocks map[int][]string, byPage map[int][]core.ImageRef) []int {
	seen := make(map[int]struct{}, len(pageBlocks)+len(byPage))
	for p := range pageBlocks {
		seen[p] = struct{}{}
	}
	for p := range byPage {
		seen[p] = struct{}{}
	}
	pages := make([]int, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// imageRecords orders a page's images top to bottom and assigns ids.
func imageRecords(page int, refs []core.ImageRef) []core.ImageRecord {
	sorted := make([]core.ImageRef, len(refs))
	copy(sorted, refs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y0 < sorted[j].Y0 })

	records := make([]core.ImageRecord, len(sorted))
	for i, img := range sorted {
		records[i] = core.ImageRecord{ID: ImageID(page, i), URL: NormalizeURL(img.Path)}
	}
	return records
}
