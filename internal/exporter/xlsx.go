package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"copilotusage/internal/report"
)

// Sheet is one worksheet of the XLSX mirror: a report type's flattened rows.
type Sheet struct {
	Name string
	Rows []*report.FlatRow
}

// WriteWorkbook writes an XLSX workbook with one sheet per report type,
// mirroring the cell values of the run's CSV exports. The workbook is a
// convenience copy; the CSVs remain the canonical output.
func (w *CSVWriter) WriteWorkbook(filename string, sheets []Sheet) (string, error) {
	if len(sheets) == 0 {
		return "", ErrNoRows
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		name := sheetName(sheet.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return "", fmt.Errorf("failed to name sheet %s: %w", name, err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return "", fmt.Errorf("failed to create sheet %s: %w", name, err)
			}
		}

		header := report.UnionColumns(sheet.Rows)
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return "", fmt.Errorf("failed to write header for %s: %w", name, err)
		}

		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return "", fmt.Errorf("failed to address row %d: %w", r+2, err)
			}
			values := make([]any, len(header))
			for c, column := range header {
				values[c] = row.Get(column)
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return "", fmt.Errorf("failed to write row %d of %s: %w", r+2, name, err)
			}
		}
	}

	fullPath := w.resolvePath(filename)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return fullPath, nil
}

// sheetName trims a report type name to Excel's 31-character sheet limit.
func sheetName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Report"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
