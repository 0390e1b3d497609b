// Package render — JSON renderer.
// Serializes structured pages as a UTF-8 JSON array ordered by page number.
// Non-ASCII and HTML-significant characters are written unescaped.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gaurav-prasanna/pagemerge/core"
)

// JSONRenderer produces the structured_pages JSON document.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render marshals the pages with two-space indentation. Nil image and table
// lists are written as [].
func (r *JSONRenderer) Render(pages []core.StructuredPage) ([]byte, error) {
	out := make([]core.StructuredPage, len(pages))
	for i, p := range pages {
		if p.Images == nil {
			p.Images = []core.ImageRecord{}
		}
		if p.Tables == nil {
			p.Tables = []core.TableRecord{}
		}
		out[i] = p
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// DecodePages reads a structured_pages JSON document back into memory.
func DecodePages(rd io.Reader) ([]core.StructuredPage, error) {
	var pages []core.StructuredPage
	dec := json.NewDecoder(rd)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&pages); err != nil {
		return nil, fmt.Errorf("decoding structured pages: %w", err)
	}
	return pages, nil
}
