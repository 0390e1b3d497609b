// Package tables separates pipe-delimited markdown tables from page prose.
//
// A table is a run of two or more consecutive lines that each start and
// end with "|". Runs are captured verbatim; header and separator rows are
// not validated.
package tables

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/pagemerge/core"
)

// Extract lifts every table run out of a page's text. Each run becomes a
// TableRecord with id tbl_<page>_<ordinal> and is replaced in the residual
// prose by a single empty line.
func Extract(page int, text string) ([]core.TableRecord, string) {
	lines := strings.Split(text, "\n")

	tables := make([]core.TableRecord, 0)
	residual := make([]string, 0, len(lines))
	var run []string

	flush := func() {
		switch {
		case len(run) >= 2:
			tables = append(tables, core.TableRecord{
				ID:      TableID(page, len(tables)),
				Content: strings.TrimSpace(strings.Join(run, "\n")),
			})
			residual = append(residual, "")
		case len(run) == 1:
			residual = append(residual, run[0])
		}
		run = nil
	}

	for _, line := range lines {
		if isTableLine(line) {
			run = append(run, line)
			continue
		}
		flush()
		residual = append(residual, line)
	}
	flush()

	return tables, strings.Join(residual, "\n")
}

// TableID formats the deterministic id of the n-th table on a page.
func TableID(page, ordinal int) string {
	return fmt.Sprintf("tbl_%d_%d", page, ordinal)
}

func isTableLine(line string) bool {
	return len(line) >= 2 && strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|")
}

// Rows splits a table's content into trimmed cells, one slice per row.
// Separator rows such as |---|:--:| are skipped.
func Rows(content string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !isTableLine(line) || isSeparator(line) {
			continue
		}
		inner := line[1 : len(line)-1]
		cells := strings.Split(inner, "|")
		for i, c := range cells {
			cells[i] = strings.TrimSpace(c)
		}
		rows = append(rows, cells)
	}
	return rows
}

func isSeparator(line string) bool {
	hasDash := false
	for _, ch := range line {
		switch ch {
		case '-':
			hasDash = true
		case '|', ':', ' ', '\t':
		default:
			return false
		}
	}
	return hasDash
}
