// Package render — PDF renderer.
// Lays structured pages out as a PDF using gofpdf: one output page per
// source page, prose first, then images, then tables in a monospace font.
// Images that cannot be read are replaced by a caption line.
package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/pagemerge/core"
	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer renders structured pages as a PDF document.
type PDFRenderer struct {
	Title string
	// BaseDir resolves relative image URLs. Empty means the working directory.
	BaseDir string
}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer(title, baseDir string) *PDFRenderer {
	if title == "" {
		title = DefaultTitle
	}
	return &PDFRenderer{Title: title, BaseDir: baseDir}
}

// Render converts the pages into PDF bytes.
func (r *PDFRenderer) Render(pages []core.StructuredPage) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(r.Title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, tr(r.Title), "", "L", false)
	pdf.Ln(4)

	for i, p := range pages {
		if i > 0 {
			pdf.AddPage()
		}

		// Page banner.
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(100, 100, 100)
		pdf.MultiCell(0, 5, fmt.Sprintf("Source page %d", p.Page), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(3)

		renderProse(pdf, tr, p.Content)

		for _, img := range p.Images {
			r.renderImage(pdf, tr, img)
		}

		for _, tbl := range p.Tables {
			pdf.Ln(2)
			pdf.SetFont("Courier", "", 8)
			pdf.SetFillColor(245, 245, 245)
			pdf.MultiCell(0, 4, tr(tbl.Content), "", "L", true)
			pdf.Ln(2)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// renderProse writes markdown prose line by line, sizing headings.
func renderProse(pdf *gofpdf.Fpdf, tr func(string) string, content string) {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			pdf.Ln(3)
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			renderHeading(pdf, tr(strings.TrimSpace(strings.TrimLeft(trimmed, "#"))), level)
			continue
		}
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(cleanInlineMarkdown(line)), "", "L", false)
	}
}

// renderHeading sets the font size based on heading level and writes text.
func renderHeading(pdf *gofpdf.Fpdf, text string, level int) {
	sizes := map[int]float64{1: 18, 2: 15, 3: 13, 4: 12, 5: 11, 6: 10}
	size, ok := sizes[level]
	if !ok {
		size = 10
	}
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, cleanInlineMarkdown(text), "", "L", false)
	pdf.Ln(2)
}

func (r *PDFRenderer) renderImage(pdf *gofpdf.Fpdf, tr func(string) string, img core.ImageRecord) {
	path := filepath.FromSlash(img.URL)
	if !filepath.IsAbs(path) && r.BaseDir != "" {
		path = filepath.Join(r.BaseDir, path)
	}

	imgType := imageType(path)
	if _, err := os.Stat(path); err != nil || imgType == "" {
		caption(pdf, tr, fmt.Sprintf("[%s: %s]", img.ID, img.URL))
		return
	}

	opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: true}
	info := pdf.RegisterImageOptions(path, opts)
	if !pdf.Ok() || info == nil {
		// A corrupt image must not poison the rest of the document.
		pdf.ClearError()
		caption(pdf, tr, fmt.Sprintf("[%s: %s]", img.ID, img.URL))
		return
	}

	w, h := info.Extent()
	maxW := 180.0
	if w > maxW {
		h = h * maxW / w
		w = maxW
	}
	pdf.ImageOptions(path, pdf.GetX(), pdf.GetY(), w, h, true, opts, 0, "")
	caption(pdf, tr, img.ID)
}

func caption(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 4, tr(text), "", "C", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)
}

func imageType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "PNG"
	case ".jpg", ".jpeg":
		return "JPG"
	case ".gif":
		return "GIF"
	default:
		return ""
	}
}

var (
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
	linkRegex       = regexp.MustCompile(`\[([^\]]*)\]\([^)]+\)`)
)

// cleanInlineMarkdown strips inline Markdown formatting for PDF rendering.
func cleanInlineMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = inlineCodeRegex.ReplaceAllString(text, "$1")
	text = linkRegex.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
