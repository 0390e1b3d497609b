package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/pagemerge/core"
	"github.com/gaurav-prasanna/pagemerge/core/validate"
)

func TestSplitBlocks(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		want     []string
	}{
		{
			name:     "blank-line separated",
			markdown: "# Title\n\nFirst paragraph.\n\nSecond paragraph.\n",
			want:     []string{"# Title", "First paragraph.", "Second paragraph."},
		},
		{
			name:     "image placeholders removed",
			markdown: "Before\n\n<!-- image -->\n\nAfter <!--image--> text",
			want:     []string{"Before", "After  text"},
		},
		{
			name:     "crlf line endings",
			markdown: "one\r\n\r\ntwo",
			want:     []string{"one", "two"},
		},
		{
			name:     "tables stay in one block",
			markdown: "Intro\n\n| a | b |\n|---|---|\n| 1 | 2 |",
			want:     []string{"Intro", "| a | b |\n|---|---|\n| 1 | 2 |"},
		},
		{
			name:     "whitespace only",
			markdown: " \n\n\t\n\n",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitBlocks(tt.markdown)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitBlocks() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoader_LoadBlocksMarkdown(t *testing.T) {
	path := writeFile(t, "doc.md", "Intro text\n\n<!-- image -->\n\nConclusion\n")
	got, err := New().LoadBlocks(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadBlocks() returned error: %v", err)
	}
	want := []string{"Intro text", "Conclusion"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadBlocks() = %q, want %q", got, want)
	}
}

func TestLoader_LoadBlocksHTML(t *testing.T) {
	html := `<html><head><title>x</title><style>p{}</style></head><body>
<h1>Report</h1>
<p>First paragraph.</p>
<figure><img src="a.png"></figure>
<p>Second paragraph.</p>
</body></html>`
	path := writeFile(t, "doc.html", html)

	got, err := New().LoadBlocks(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadBlocks() returned error: %v", err)
	}
	want := []string{"# Report", "First paragraph.", "Second paragraph."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LoadBlocks() = %q, want %q", got, want)
	}
}

func TestLoader_LoadBlocksRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/export":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte("<html><body><nav>menu</nav><p>Remote intro.</p><p>Remote end.</p></body></html>"))
		case "/export.md":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("One\n\nTwo"))
		}
	}))
	defer srv.Close()

	tests := []struct {
		path string
		want []string
	}{
		{"/export", []string{"Remote intro.", "Remote end."}},
		{"/export.md", []string{"One", "Two"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := New().LoadBlocks(context.Background(), srv.URL+tt.path)
			if err != nil {
				t.Fatalf("LoadBlocks() returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LoadBlocks() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/doc.md": true,
		"http://localhost:8080/x":    true,
		"docs/report.md":             false,
		"C:\\exports\\report.md":     false,
		"ftp://example.com/x":        false,
	}
	for loc, want := range tests {
		if got := IsRemote(loc); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", loc, got, want)
		}
	}
}

func TestLoadExtraction(t *testing.T) {
	path := writeFile(t, "cache.json", `{
  "paragraphs": [
    {"page_num": 1, "y0": 72.1, "text": "Intro text", "md": "Intro text"},
    {"page_num": 2, "y0": 40, "text": "Conclusion", "md": "Conclusion"}
  ],
  "images": [
    {"page_num": 1, "y0": 10, "name": "page1_img0", "path": "images/page1_img0.png"}
  ]
}`)

	ex, err := LoadExtraction(path)
	if err != nil {
		t.Fatalf("LoadExtraction() returned error: %v", err)
	}
	wantParas := []core.Paragraph{
		{PageNum: 1, Y0: 72.1, Text: "Intro text"},
		{PageNum: 2, Y0: 40, Text: "Conclusion"},
	}
	if !reflect.DeepEqual(ex.Paragraphs, wantParas) {
		t.Errorf("Paragraphs = %+v, want %+v", ex.Paragraphs, wantParas)
	}
	wantImages := []core.ImageRef{{PageNum: 1, Y0: 10, Path: "images/page1_img0.png"}}
	if !reflect.DeepEqual(ex.Images, wantImages) {
		t.Errorf("Images = %+v, want %+v", ex.Images, wantImages)
	}
}

func TestLoadExtraction_Invalid(t *testing.T) {
	path := writeFile(t, "bad.json", `{"paragraphs":[{"page_num":0,"y0":1,"text":"x"}],"images":[]}`)
	_, err := LoadExtraction(path)
	if !errors.Is(err, validate.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad.json") {
		t.Errorf("Expected error to name the file, got %v", err)
	}
}

func TestDecodeExtraction_PageNumbers(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    int
		wantErr bool
	}{
		{name: "integer", data: `1`, want: 1},
		{name: "integral float", data: `3.0`, want: 3},
		{name: "exponent", data: `2e0`, want: 2},
		{name: "fractional", data: `1.5`, wantErr: true},
		{name: "zero float", data: `0.0`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := `{"paragraphs":[{"page_num":` + tt.data + `,"y0":0,"text":"x"}],` +
				`"images":[{"page_num":` + tt.data + `,"y0":0,"path":"a.png"}]}`
			ex, err := DecodeExtraction([]byte(data))
			if tt.wantErr {
				if !errors.Is(err, validate.ErrInvalidInput) {
					t.Fatalf("Expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeExtraction() returned error: %v", err)
			}
			if ex.Paragraphs[0].PageNum != tt.want || ex.Images[0].PageNum != tt.want {
				t.Errorf("Expected page %d, got %+v", tt.want, ex)
			}
		})
	}
}

func TestLoadExtraction_MissingFile(t *testing.T) {
	if _, err := LoadExtraction(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
