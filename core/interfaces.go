// Package core defines the data model and stage interfaces for pagemerge.
// Each stage of the merge pipeline is a small, testable unit that consumes
// immutable inputs and returns new values.
package core

import "context"

// SemanticBlock is a trimmed text segment from the semantic extractor,
// in document reading order, with no page attribution.
type SemanticBlock = string

// Paragraph is a page-positioned text fragment from low-level extraction.
type Paragraph struct {
	PageNum int     `json:"page_num"`
	Y0      float64 `json:"y0"`
	Text    string  `json:"text"`
}

// ImageRef points at an already-written image file on a given page.
type ImageRef struct {
	PageNum int     `json:"page_num"`
	Y0      float64 `json:"y0"`
	Path    string  `json:"path"`
}

// Extraction is the low-level extractor's output for one document.
type Extraction struct {
	Paragraphs []Paragraph `json:"paragraphs"`
	Images     []ImageRef  `json:"images"`
}

// AlignedBlock is a semantic block with its raw candidate page and the
// page it was finally assigned after smoothing.
type AlignedBlock struct {
	Text      string
	Candidate int
	PageNum   int
}

// TableRecord is a table lifted out of a page's prose.
type TableRecord struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// ImageRecord is an image placed on a page.
type ImageRecord struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// StructuredPage is the canonical per-page record.
type StructuredPage struct {
	Page    int           `json:"page"`
	Content string        `json:"content"`
	Images  []ImageRecord `json:"images"`
	Tables  []TableRecord `json:"tables"`
}

// FetchResult holds a semantic export retrieved over HTTP.
type FetchResult struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher retrieves a remote semantic export.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Scorer measures textual similarity between two strings.
// Ratio must return a value in [0, 1], with 1 meaning identical.
type Scorer interface {
	Ratio(a, b string) float64
}

// Extractor pulls the main content out of an HTML export, stripping images
// and page furniture.
type Extractor interface {
	Extract(html string) (string, error)
}

// Normalizer converts cleaned HTML into Markdown (the canonical block format).
type Normalizer interface {
	Normalize(html string) (string, error)
}

// Renderer converts structured pages into a final output format.
type Renderer interface {
	Render(pages []StructuredPage) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
