// Package render — XLSX renderer.
// Exports every extracted table into its own worksheet, plus an index sheet
// listing table ids, source pages and row counts.
package render

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/gaurav-prasanna/pagemerge/core"
	"github.com/gaurav-prasanna/pagemerge/core/tables"
)

const indexSheet = "Tables"

// XLSXRenderer produces a workbook of the document's tables.
type XLSXRenderer struct{}

// NewXLSXRenderer creates an XLSXRenderer.
func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

// Render builds the workbook in memory and returns its bytes.
func (r *XLSXRenderer) Render(pages []core.StructuredPage) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", indexSheet); err != nil {
		return nil, fmt.Errorf("renaming index sheet: %w", err)
	}
	if err := setRow(f, indexSheet, 1, "Table", "Page", "Rows", "Columns"); err != nil {
		return nil, err
	}

	row := 2
	for _, p := range pages {
		for _, tbl := range p.Tables {
			rows := tables.Rows(tbl.Content)
			cols := 0
			for _, cells := range rows {
				cols = max(cols, len(cells))
			}

			if err := writeTableSheet(f, tbl.ID, rows); err != nil {
				return nil, err
			}

			if err := setRow(f, indexSheet, row, tbl.ID, p.Page, len(rows), cols); err != nil {
				return nil, err
			}
			link, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellHyperLink(indexSheet, link, tbl.ID+"!A1", "Location"); err != nil {
				return nil, fmt.Errorf("linking %s: %w", tbl.ID, err)
			}
			row++
		}
	}
	if err := f.SetColWidth(indexSheet, "A", "A", 16); err != nil {
		return nil, fmt.Errorf("sizing index sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for the tables workbook.
func (r *XLSXRenderer) Extension() string {
	return ".tables.xlsx"
}

func writeTableSheet(f *excelize.File, name string, rows [][]string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("creating sheet %s: %w", name, err)
	}
	for r, cells := range rows {
		values := make([]any, len(cells))
		for i, v := range cells {
			values[i] = v
		}
		if err := setRow(f, name, r+1, values...); err != nil {
			return err
		}
	}
	return nil
}

// setRow writes values into consecutive cells of row, starting at column A.
func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for c, v := range values {
		cell, err := excelize.CoordinatesToCellName(c+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("writing %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
