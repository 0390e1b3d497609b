package tables

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantContents []string
		wantResidual string
	}{
		{
			name:         "table between prose",
			text:         "a\n| x | y |\n| 1 | 2 |\nb",
			wantContents: []string{"| x | y |\n| 1 | 2 |"},
			wantResidual: "a\n\nb",
		},
		{
			name:         "single line is prose",
			text:         "a\n| lonely |\nb",
			wantContents: nil,
			wantResidual: "a\n| lonely |\nb",
		},
		{
			name:         "no tables",
			text:         "just prose\n\nmore prose",
			wantContents: nil,
			wantResidual: "just prose\n\nmore prose",
		},
		{
			name:         "table at start",
			text:         "| h |\n|---|\nafter",
			wantContents: []string{"| h |\n|---|"},
			wantResidual: "\nafter",
		},
		{
			name:         "table at end",
			text:         "before\n| h |\n| v |",
			wantContents: []string{"| h |\n| v |"},
			wantResidual: "before\n",
		},
		{
			name:         "two tables split by blank line",
			text:         "| a | b |\n|---|---|\n\n| c |\n| d |",
			wantContents: []string{"| a | b |\n|---|---|", "| c |\n| d |"},
			wantResidual: "\n\n",
		},
		{
			name:         "line not ending in bar breaks the run",
			text:         "| a |\n| b | trailing\n| c |",
			wantContents: nil,
			wantResidual: "| a |\n| b | trailing\n| c |",
		},
		{
			name:         "three line run",
			text:         "intro\n| h1 | h2 |\n|----|----|\n| v1 | v2 |\noutro",
			wantContents: []string{"| h1 | h2 |\n|----|----|\n| v1 | v2 |"},
			wantResidual: "intro\n\noutro",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, residual := Extract(3, tt.text)
			if len(got) != len(tt.wantContents) {
				t.Fatalf("Expected %d tables, got %d: %+v", len(tt.wantContents), len(got), got)
			}
			for i, tbl := range got {
				if tbl.Content != tt.wantContents[i] {
					t.Errorf("Table %d: expected content %q, got %q", i, tt.wantContents[i], tbl.Content)
				}
				if want := TableID(3, i); tbl.ID != want {
					t.Errorf("Table %d: expected id %q, got %q", i, want, tbl.ID)
				}
			}
			if residual != tt.wantResidual {
				t.Errorf("Expected residual %q, got %q", tt.wantResidual, residual)
			}
		})
	}
}

func TestExtract_IDs(t *testing.T) {
	got, _ := Extract(12, "| a |\n| b |\n\n| c |\n| d |")
	if got[0].ID != "tbl_12_0" || got[1].ID != "tbl_12_1" {
		t.Errorf("Unexpected ids: %q, %q", got[0].ID, got[1].ID)
	}
}

func TestExtract_EmptyTablesNotNil(t *testing.T) {
	got, _ := Extract(1, "")
	if got == nil {
		t.Error("Expected an empty, non-nil table slice")
	}
}

func TestRows(t *testing.T) {
	content := "| Name | Qty |\n|:-----|----:|\n| bolt | 4 |\n| nut  |   |"
	want := [][]string{
		{"Name", "Qty"},
		{"bolt", "4"},
		{"nut", ""},
	}
	if got := Rows(content); !reflect.DeepEqual(got, want) {
		t.Errorf("Rows() = %q, want %q", got, want)
	}
}
