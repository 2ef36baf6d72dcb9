package sheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		expected Layout
	}{
		{
			name: "template marker in column A",
			rows: [][]string{
				{"", ""},
				{"Market Area Definitions", ""},
			},
			expected: LayoutTemplate,
		},
		{
			name: "template marker in column B",
			rows: [][]string{
				{"", "Market Area Template"},
			},
			expected: LayoutTemplate,
		},
		{
			name: "second column B marker",
			rows: [][]string{
				{"", "MA Template"},
			},
			expected: LayoutTemplate,
		},
		{
			name: "marker matching is case insensitive and trimmed",
			rows: [][]string{
				{"  MARKET AREA DEFINITIONS  "},
			},
			expected: LayoutTemplate,
		},
		{
			name: "header row means standard",
			rows: [][]string{
				{"Name", "Type", "Locations"},
				{"Downtown", "ZIP", "92675"},
			},
			expected: LayoutStandard,
		},
		{
			name: "marker past row 20 is ignored",
			rows: func() [][]string {
				rows := make([][]string, 25)
				for i := range rows {
					rows[i] = []string{"", ""}
				}
				rows[22][0] = "Market Area Definitions"
				return rows
			}(),
			expected: LayoutStandard,
		},
		{
			name:     "empty input",
			rows:     nil,
			expected: LayoutStandard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectLayout(tt.rows))
		})
	}
}

func TestCell(t *testing.T) {
	rows := [][]string{
		{"a", " b "},
		{"c"},
	}

	assert.Equal(t, "a", Cell(rows, 0, 0))
	assert.Equal(t, "b", Cell(rows, 0, 1))
	assert.Equal(t, "", Cell(rows, 1, 1), "short row")
	assert.Equal(t, "", Cell(rows, 5, 0), "row out of range")
	assert.Equal(t, "", Cell(rows, -1, 0))
}

func TestReadCSVStripsBOM(t *testing.T) {
	input := "\uFEFFName,Type\nOrange County Area,County\n"

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Name", "Type"}, rows[0])
	assert.Equal(t, []string{"Orange County Area", "County"}, rows[1])
}

func TestReadCSVRaggedRows(t *testing.T) {
	input := "a,b,c\nd\ne,f\n"

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Len(t, rows[0], 3)
	assert.Len(t, rows[1], 1)
}

func TestIsSpreadsheetPath(t *testing.T) {
	assert.True(t, IsSpreadsheetPath("areas.xlsx"))
	assert.True(t, IsSpreadsheetPath("AREAS.XLSX"))
	assert.False(t, IsSpreadsheetPath("areas.csv"))
}
