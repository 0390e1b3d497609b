package output

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriter_Write(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	w, err := New(root)
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}

	path, err := w.Write("annual report", "annual_report.md", []byte("# x\n"))
	if err != nil {
		t.Fatalf("Write() returned error: %v", err)
	}

	want := filepath.Join(root, "annual_report", "annual_report.md")
	if path != want {
		t.Errorf("Expected path %s, got %s", want, path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "# x\n" {
		t.Errorf("Unexpected file contents %q (err %v)", data, err)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name, ext, want string
	}{
		{"report", ".json", PagesFile},
		{"report", ".md", "report.md"},
		{"q3 report", ".pdf", "q3_report.pdf"},
		{"report", ".tables.xlsx", "report.tables.xlsx"},
	}
	for _, tt := range tests {
		if got := FileName(tt.name, tt.ext); got != tt.want {
			t.Errorf("FileName(%q, %q) = %q, want %q", tt.name, tt.ext, got, tt.want)
		}
	}
}

func TestDocumentName(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"exports/report.md", "report"},
		{filepath.Join("batch", "acme", "blocks.md"), "acme"},
		{filepath.Join("batch", "acme", "blocks.html"), "acme"},
		{"blocks.md", "blocks"},
		{"my file.v2.md", "my_file_v2"},
	}
	for _, tt := range tests {
		if got := DocumentName(tt.path); got != tt.want {
			t.Errorf("DocumentName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSanitize(t *testing.T) {
	if got := Sanitize(""); got != "document" {
		t.Errorf("Expected fallback name, got %q", got)
	}
	if got := Sanitize("a/b..c"); got != "a_b__c" {
		t.Errorf("Sanitize(a/b..c) = %q", got)
	}
}
