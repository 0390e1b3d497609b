// Package extract implements the Extractor interface for HTML exports of
// the semantic document structure. It isolates the document body by:
//  1. Removing images, scripts and other non-text elements
//  2. Finding the best content container (<main>, <article>, or <body>)
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are removed before extraction. Image placeholders are
// dropped here because images come from the low-level extractor instead.
var noiseSelectors = []string{
	"head", "script", "style", "noscript",
	"img", "picture", "svg", "canvas",
	"iframe", "video", "audio",
	"nav", "form", "button", "input", "select", "textarea",
}

// HTMLExtractor strips noise from an HTML export and returns the body fragment.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract takes a full HTML export and returns a cleaned HTML fragment
// containing only the document text, tables and captions.
func (e *HTMLExtractor) Extract(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	// Figures without a caption carry nothing once the image is gone.
	doc.Find("figure").Each(func(_ int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "" {
			s.Remove()
		}
	})

	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			content = sel.First()
			break
		}
	}

	if content == nil {
		return "", fmt.Errorf("no content container found in HTML")
	}

	result, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("serializing content: %w", err)
	}

	return result, nil
}
