package sheet

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions selects the worksheet to read.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ReadXLSX reads a workbook and returns every row of the selected sheet
// as string slices. Cell styling is not inspected here; the standard
// parser receives background colors through CellColors.
func ReadXLSX(path string, opts XLSXOptions) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: open xlsx")
	}

	s, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// CellColors extracts per-cell background fill colors ("#RRGGBB", or ""
// when unset) for the selected sheet. The standard parser prefers a true
// cell background over the cell's text when deriving style settings.
func CellColors(path string, opts XLSXOptions) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: open xlsx")
	}

	s, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	colors := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		rowColors := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			style := cell.GetStyle()
			if style == nil {
				continue
			}
			fg := style.Fill.FgColor
			// tealeg encodes colors as ARGB; drop the alpha byte.
			if len(fg) == 8 {
				fg = fg[2:]
			}
			if fg != "" && fg != "000000" {
				rowColors[j] = "#" + fg
			}
		}
		colors = append(colors, rowColors)
	}
	return colors, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		s, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("sheet: worksheet %q not found", opts.SheetName)
		}
		return s, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("sheet: worksheet index %d out of range (file has %d)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}
