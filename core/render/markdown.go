// Package render provides output renderers for structured pages.
// This file implements the Markdown renderer, the canonical human-readable
// output of a merge.
package render

import (
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/pagemerge/core"
	"github.com/gaurav-prasanna/pagemerge/core/assemble"
)

// DefaultTitle heads the markdown document when no title is configured.
const DefaultTitle = "Merged Document"

// MarkdownRenderer writes pages between begin/end marker comments, with
// images and tables in their own marked sections.
type MarkdownRenderer struct {
	Title string
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer(title string) *MarkdownRenderer {
	if title == "" {
		title = DefaultTitle
	}
	return &MarkdownRenderer{Title: title}
}

// Render serializes the pages. Output depends only on the pages and title.
func (r *MarkdownRenderer) Render(pages []core.StructuredPage) ([]byte, error) {
	var b strings.Builder
	para(&b, "# "+r.Title)
	for _, p := range pages {
		renderPage(&b, p)
	}
	return []byte(b.String()), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

func renderPage(b *strings.Builder, p core.StructuredPage) {
	para(b, pageMarker(p.Page, "begin"))
	if p.Content != "" {
		para(b, p.Content)
	}

	if len(p.Images) > 0 {
		para(b, "<!-- images -->")
		for _, img := range p.Images {
			para(b, "!["+img.ID+"]("+assemble.NormalizeURL(img.URL)+")")
		}
	}

	if len(p.Tables) > 0 {
		para(b, "<!-- tables -->")
		for _, tbl := range p.Tables {
			if content := strings.TrimSpace(tbl.Content); content != "" {
				para(b, content)
			}
		}
	}

	para(b, pageMarker(p.Page, "end"))
}

func pageMarker(page int, edge string) string {
	return "<!-- page " + strconv.Itoa(page) + " " + edge + " -->"
}

// para writes s followed by a blank line.
func para(b *strings.Builder, s string) {
	b.WriteString(s)
	b.WriteString("\n\n")
}
