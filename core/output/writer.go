// Package output handles file naming and writing for merge outputs.
// Every document gets its own directory under the output root, named after
// the document (e.g., out/annual_report/annual_report.md).
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PagesFile is the fixed name of the structured pages JSON.
const PagesFile = "structured_pages.json"

// Writer writes rendered output to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	// Ensure the output directory exists.
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// DocumentDir returns the directory holding a document's outputs.
func (w *Writer) DocumentDir(name string) string {
	return filepath.Join(w.OutputDir, Sanitize(name))
}

// Write stores data as filename inside the document's directory and
// returns the written path.
func (w *Writer) Write(name, filename string, data []byte) (string, error) {
	dir := w.DocumentDir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// FileName returns the output file name for a renderer extension.
// JSON always goes to structured_pages.json; everything else is name+ext.
func FileName(name, ext string) string {
	if ext == ".json" {
		return PagesFile
	}
	return Sanitize(name) + ext
}

// DocumentName derives a document name from the blocks file path.
// Example: exports/report.md → report; batch/acme/blocks.md → acme
func DocumentName(blocksPath string) string {
	base := filepath.Base(blocksPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.EqualFold(stem, "blocks") {
		if parent := filepath.Base(filepath.Dir(blocksPath)); parent != "." && parent != string(filepath.Separator) {
			stem = parent
		}
	}
	return Sanitize(stem)
}

// Sanitize replaces characters outside [A-Za-z0-9_-] with underscores.
func Sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' {
			b.WriteRune(ch)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "document"
	}
	return b.String()
}
