package sheet

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadCSV reads CSV rows from r. Exported spreadsheets frequently carry a
// UTF-8 BOM, which is stripped before parsing.
func ReadCSV(r io.Reader) ([][]string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1 // rows are ragged in both layouts
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "sheet: read csv row")
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// Load reads rows from an XLSX or CSV file, chosen by extension.
func Load(path string, opts XLSXOptions) ([][]string, error) {
	if IsSpreadsheetPath(path) {
		return ReadXLSX(path, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "sheet: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return ReadCSV(f)
}
