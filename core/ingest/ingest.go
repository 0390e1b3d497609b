// Package ingest loads the two upstream exports a merge consumes: the
// semantic block export (Markdown or HTML) and the low-level extraction
// cache (JSON). Semantic exports may also be fetched over HTTP.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/pagemerge/core"
	"github.com/gaurav-prasanna/pagemerge/core/extract"
	"github.com/gaurav-prasanna/pagemerge/core/fetch"
	"github.com/gaurav-prasanna/pagemerge/core/normalize"
	"github.com/gaurav-prasanna/pagemerge/core/validate"
)

// imagePlaceholder matches the inline image comments left in Markdown exports.
var imagePlaceholder = regexp.MustCompile(`<!--\s*image\s*-->`)

// Loader reads upstream exports from disk or HTTP.
type Loader struct {
	Extractor  core.Extractor
	Normalizer core.Normalizer
	Fetcher    core.Fetcher
}

// New creates a Loader with the HTML extractor, Markdown normalizer and
// HTTP fetcher.
func New() *Loader {
	return &Loader{Extractor: extract.New(), Normalizer: normalize.New(), Fetcher: fetch.New()}
}

// Source is the raw bytes of a semantic export.
type Source struct {
	Location string
	Data     []byte
	HTML     bool
}

// ReadBlocks reads a semantic export from a file path or an http(s) URL.
// Exports ending in .html or .htm, or served as text/html, are flagged as HTML.
func (l *Loader) ReadBlocks(ctx context.Context, location string) (*Source, error) {
	if !IsRemote(location) {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("reading blocks %s: %w", location, err)
		}
		return &Source{Location: location, Data: data, HTML: isHTMLPath(location)}, nil
	}

	if l.Fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured for %s", location)
	}
	res, err := l.Fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	u, _ := url.Parse(location)
	html := strings.Contains(strings.ToLower(res.ContentType), "html") || (u != nil && isHTMLPath(u.Path))
	return &Source{Location: location, Data: res.Body, HTML: html}, nil
}

// Blocks converts a source into semantic blocks. HTML is cleaned and
// converted to Markdown first.
func (l *Loader) Blocks(src *Source) ([]core.SemanticBlock, error) {
	markdown := string(src.Data)
	if src.HTML {
		var err error
		markdown, err = l.htmlToMarkdown(markdown)
		if err != nil {
			return nil, fmt.Errorf("converting %s: %w", src.Location, err)
		}
	}
	return SplitBlocks(markdown), nil
}

// LoadBlocks reads a semantic export and splits it into blocks.
func (l *Loader) LoadBlocks(ctx context.Context, location string) ([]core.SemanticBlock, error) {
	src, err := l.ReadBlocks(ctx, location)
	if err != nil {
		return nil, err
	}
	return l.Blocks(src)
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isHTMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

func (l *Loader) htmlToMarkdown(html string) (string, error) {
	content, err := l.Extractor.Extract(html)
	if err != nil {
		return "", fmt.Errorf("extract: %w", err)
	}
	markdown, err := l.Normalizer.Normalize(content)
	if err != nil {
		return "", fmt.Errorf("normalize: %w", err)
	}
	return markdown, nil
}

// SplitBlocks strips image placeholders, splits on blank lines and drops
// blank blocks. Every block is trimmed.
func SplitBlocks(markdown string) []core.SemanticBlock {
	markdown = strings.ReplaceAll(markdown, "\r\n", "\n")
	markdown = imagePlaceholder.ReplaceAllString(markdown, "")

	var blocks []core.SemanticBlock
	for _, part := range strings.Split(markdown, "\n\n") {
		if part = strings.TrimSpace(part); part != "" {
			blocks = append(blocks, part)
		}
	}
	return blocks
}

// LoadExtraction reads and validates an extraction cache file.
func LoadExtraction(path string) (*core.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading extraction %s: %w", path, err)
	}
	ex, err := DecodeExtraction(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ex, nil
}

// DecodeExtraction validates raw cache bytes and decodes them.
func DecodeExtraction(data []byte) (*core.Extraction, error) {
	if err := validate.ExtractionJSON(data); err != nil {
		return nil, err
	}

	var raw rawExtraction
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding extraction: %w", err)
	}

	ex := &core.Extraction{
		Paragraphs: make([]core.Paragraph, len(raw.Paragraphs)),
		Images:     make([]core.ImageRef, len(raw.Images)),
	}
	for i, p := range raw.Paragraphs {
		ex.Paragraphs[i] = core.Paragraph{PageNum: int(p.PageNum), Y0: p.Y0, Text: p.Text}
	}
	for i, img := range raw.Images {
		ex.Images[i] = core.ImageRef{PageNum: int(img.PageNum), Y0: img.Y0, Path: img.Path}
	}
	return ex, nil
}

// rawExtraction mirrors core.Extraction with JSON numbers for page_num, so
// integral values written as 1.0 decode. The schema has already rejected
// fractional and non-positive pages.
type rawExtraction struct {
	Paragraphs []struct {
		PageNum float64 `json:"page_num"`
		Y0      float64 `json:"y0"`
		Text    string  `json:"text"`
	} `json:"paragraphs"`
	Images []struct {
		PageNum float64 `json:"page_num"`
		Y0      float64 `json:"y0"`
		Path    string  `json:"path"`
	} `json:"images"`
}
