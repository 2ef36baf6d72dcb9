// Package sheet loads spreadsheet rows and detects which of the two
// supported market area layouts a workbook uses.
package sheet

import (
	"path/filepath"
	"strings"
)

// Layout identifies a spreadsheet layout.
type Layout string

const (
	// LayoutTemplate is the fixed-offset TCG template layout: one market
	// area every two columns, field values at fixed row offsets.
	LayoutTemplate Layout = "template"

	// LayoutStandard is the header-driven tabular layout: one market area
	// per data row.
	LayoutStandard Layout = "standard"
)

// detectScanRows bounds the marker scan; template markers always sit in
// the first few rows of real workbooks.
const detectScanRows = 20

// Marker strings identifying the template layout.
const templateMarkerA = "MARKET AREA DEFINITIONS"

var templateMarkersB = []string{
	"MARKET AREA TEMPLATE",
	"MA TEMPLATE",
}

// DetectLayout inspects the leading rows and decides which layout the
// workbook uses. Pure function of the row set.
func DetectLayout(rows [][]string) Layout {
	limit := len(rows)
	if limit > detectScanRows {
		limit = detectScanRows
	}

	for i := 0; i < limit; i++ {
		row := rows[i]
		if cellEquals(row, 0, templateMarkerA) {
			return LayoutTemplate
		}
		for _, marker := range templateMarkersB {
			if cellEquals(row, 1, marker) {
				return LayoutTemplate
			}
		}
	}
	return LayoutStandard
}

func cellEquals(row []string, idx int, marker string) bool {
	if idx >= len(row) {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(row[idx]), marker)
}

// Cell returns the trimmed cell at (row, col), or "" when out of range.
// Parsers address cells positionally and rows are ragged in practice.
func Cell(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) {
		return ""
	}
	r := rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// IsSpreadsheetPath reports whether the path names an XLSX workbook (as
// opposed to CSV, the only other supported input).
func IsSpreadsheetPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".xlsx" || ext == ".xlsm"
}
