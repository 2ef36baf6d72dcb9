package parse

import (
	"strconv"
	"strings"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// OpacityPercentMeans selects the direction of percent-to-opacity
// conversion. Workbook variants disagree: some label the cell
// "Transparency" (70% means mostly see-through), others "Opacity".
type OpacityPercentMeans string

const (
	// PercentMeansTransparency converts "70%" to fillOpacity 0.30.
	PercentMeansTransparency OpacityPercentMeans = "transparency"

	// PercentMeansOpacity converts "70%" to fillOpacity 0.70.
	PercentMeansOpacity OpacityPercentMeans = "opacity"
)

// Special style cell texts. These are unconditional overrides: once seen,
// any numeric value read before or after is discarded.
const (
	noFillText   = "no fill"
	noBorderText = "no border"
)

// IsNoFill reports whether a cell is the explicit no-fill override.
func IsNoFill(cell string) bool {
	return strings.EqualFold(strings.TrimSpace(cell), noFillText)
}

// IsNoBorder reports whether a cell is the explicit no-border override.
func IsNoBorder(cell string) bool {
	return strings.EqualFold(strings.TrimSpace(cell), noBorderText)
}

// ParseOpacity converts an opacity/transparency cell to a fill opacity in
// [0, 1]. Accepted forms: "%"-suffixed percent, a raw 0-1 opacity, and a
// raw number above 1 treated as a percent. Returns ok=false for anything
// else.
func ParseOpacity(cell string, mode OpacityPercentMeans) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}

	isPercent := strings.HasSuffix(s, "%")
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	if !isPercent && v >= 0 && v <= 1 {
		return v, true
	}

	// Percent, either explicit or a bare number above 1.
	pct := v
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if mode == PercentMeansOpacity {
		return pct / 100, true
	}
	return (100 - pct) / 100, true
}

// ParseBorderWidth parses a border weight cell. Returns ok=false for
// non-numeric or negative values.
func ParseBorderWidth(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// looksLikeColor reports whether a cell plausibly holds a color value
// (hex code or a CSS-style color name).
func looksLikeColor(cell string) bool {
	s := strings.TrimSpace(cell)
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "#") {
		return len(s) == 4 || len(s) == 7 || len(s) == 9
	}
	// Color names carry no digits or separators.
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			return false
		}
	}
	return true
}

// applyFillCell folds one fill color cell into the style: the no-fill
// text flips the flag and zeroes opacity, anything color-shaped becomes
// the fill color.
func applyFillCell(style *marketarea.StyleSettings, cell string) {
	if IsNoFill(cell) {
		style.NoFill = true
		style.FillOpacity = 0
		return
	}
	if looksLikeColor(cell) {
		style.FillColor = strings.TrimSpace(cell)
	}
}

// applyBorderColorCell folds one border color cell into the style.
func applyBorderColorCell(style *marketarea.StyleSettings, cell string) {
	if IsNoBorder(cell) {
		style.NoBorder = true
		style.BorderWidth = 0
		return
	}
	if looksLikeColor(cell) {
		style.BorderColor = strings.TrimSpace(cell)
	}
}
