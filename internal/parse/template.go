package parse

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// Fixed row offsets of the template layout. Market areas occupy every
// second column starting at column D.
const (
	rowName            = 4
	rowShortName       = 6
	rowTextColor       = 8
	rowType            = 10
	rowState           = 12
	rowCounty          = 14
	rowLatitude        = 16
	rowLongitude       = 17
	rowAmount          = 19
	rowFillColor       = 23
	rowTransparency    = 24
	rowBorderColor     = 26
	rowBorderWeight    = 27
	rowFirstDefinition = 29

	colFirstArea = 3
	colStride    = 2

	// definitionScanWindow bounds the value scan below the definition
	// start row; template workbooks never approach this.
	definitionScanWindow = 500
)

// Options configures both parsers.
type Options struct {
	Policy              Policy
	Supported           map[marketarea.Kind]bool
	OpacityMode         OpacityPercentMeans
	DefaultState        string
	DefaultRadiusMiles  float64
	DefaultDriveMinutes float64
	FallbackLatitude    float64
	FallbackLongitude   float64
	ProjectID           string
	StylePresets        map[marketarea.Kind]marketarea.StyleSettings
}

func (o *Options) defaults() {
	if o.Policy == "" {
		o.Policy = PolicyPermissive
	}
	if o.OpacityMode == "" {
		o.OpacityMode = PercentMeansTransparency
	}
	if o.DefaultState == "" {
		o.DefaultState = "CA"
	}
	if o.DefaultRadiusMiles == 0 {
		o.DefaultRadiusMiles = 5
	}
	if o.DefaultDriveMinutes == 0 {
		o.DefaultDriveMinutes = 10
	}
	if o.FallbackLatitude == 0 && o.FallbackLongitude == 0 {
		// Center of the contiguous US, matching the resolver fallback.
		o.FallbackLatitude = 39.8283
		o.FallbackLongitude = -98.5795
	}
}

// ParseTemplate extracts drafts from the fixed-offset template layout.
// Columns missing either a name or a type cell are not market areas;
// areas with no resolvable definition values are dropped with a warning.
func ParseTemplate(rows [][]string, opts Options) ([]marketarea.Draft, error) {
	opts.defaults()
	if len(rows) == 0 {
		return nil, NewParseError("template input has no rows")
	}

	log := zap.L().Named("parse")

	maxCol := 0
	for _, row := range rows {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}

	var drafts []marketarea.Draft
	for col := colFirstArea; col < maxCol; col += colStride {
		name := cell(rows, rowName, col)
		rawType := cell(rows, rowType, col)
		if name == "" || rawType == "" {
			continue
		}

		kind, ok := Classify(rawType, opts.Policy, opts.Supported)
		if !ok {
			log.Warn("template: skipping unsupported market area type",
				zap.String("name", name),
				zap.String("type", rawType),
			)
			continue
		}

		draft := marketarea.Draft{
			Name:      name,
			ShortName: cell(rows, rowShortName, col),
			Kind:      kind,
			Style:     templateStyle(rows, col, kind, opts),
			ProjectID: opts.ProjectID,
		}

		state := cell(rows, rowState, col)
		if state == "" {
			state = opts.DefaultState
		}
		county := cell(rows, rowCounty, col)

		switch kind {
		case marketarea.KindRadius, marketarea.KindDriveTime:
			point := templatePoint(rows, col, kind, opts)
			if kind == marketarea.KindRadius {
				draft.RadiusPoints = []marketarea.Point{point}
			} else {
				draft.DriveTimePoints = []marketarea.Point{point}
			}
		default:
			values := scanDefinitionValues(rows, col, kind, name, county, state)
			if len(values) == 0 && kind == marketarea.KindCounty {
				// County templates frequently leave the definition list
				// empty and rely on the county header cell.
				fallback := county
				if fallback == "" {
					fallback = name
				}
				values = []string{fallback}
			}
			if len(values) == 0 {
				log.Warn("template: dropping market area with no definition values",
					zap.String("name", name),
					zap.String("kind", string(kind)),
				)
				continue
			}
			for _, v := range values {
				draft.Locations = append(draft.Locations, marketarea.Location{
					ID:    v,
					Name:  v,
					State: state,
				})
			}
		}

		drafts = append(drafts, draft)
	}

	return drafts, nil
}

// templateStyle reads the style cells of one market area column. The
// no-fill/no-border texts may appear in the color cells and override any
// numeric transparency or weight read afterwards.
func templateStyle(rows [][]string, col int, kind marketarea.Kind, opts Options) marketarea.StyleSettings {
	style := baseStyle(kind, opts)

	applyFillCell(&style, cell(rows, rowFillColor, col))
	applyBorderColorCell(&style, cell(rows, rowBorderColor, col))

	if !style.NoFill {
		if transCell := cell(rows, rowTransparency, col); IsNoFill(transCell) {
			style.NoFill = true
		} else if opacity, ok := ParseOpacity(transCell, opts.OpacityMode); ok {
			style.FillOpacity = opacity
		}
	}
	if !style.NoBorder {
		if weightCell := cell(rows, rowBorderWeight, col); IsNoBorder(weightCell) {
			style.NoBorder = true
		} else if width, ok := ParseBorderWidth(weightCell); ok {
			style.BorderWidth = width
		}
	}

	if theme := cell(rows, rowTextColor, col); theme != "" && !looksLikeColor(theme) {
		style.ThemeName = theme
	}

	style.Normalize()
	return style
}

// templatePoint reads the lat/lon/amount triplet of a radius or drive
// time column, falling back to the configured coordinate and kind default
// amount when cells are absent.
func templatePoint(rows [][]string, col int, kind marketarea.Kind, opts Options) marketarea.Point {
	point := marketarea.Point{
		Latitude:  opts.FallbackLatitude,
		Longitude: opts.FallbackLongitude,
	}
	if lat, err := strconv.ParseFloat(cell(rows, rowLatitude, col), 64); err == nil {
		point.Latitude = lat
	}
	if lon, err := strconv.ParseFloat(cell(rows, rowLongitude, col), 64); err == nil {
		point.Longitude = lon
	}

	amount, err := strconv.ParseFloat(cell(rows, rowAmount, col), 64)
	if kind == marketarea.KindRadius {
		if err != nil || amount <= 0 {
			amount = opts.DefaultRadiusMiles
		}
		point.Radius = amount
	} else {
		if err != nil || amount <= 0 {
			amount = opts.DefaultDriveMinutes
		}
		point.Minutes = amount
	}
	return point
}

// scanDefinitionValues collects definition values below the definition
// start row, skipping style texts, duplicates of the header cells, and
// values failing the kind filter.
func scanDefinitionValues(rows [][]string, col int, kind marketarea.Kind, name, county, state string) []string {
	excluded := map[string]bool{
		strings.ToLower(name):   true,
		strings.ToLower(county): true,
		strings.ToLower(state):  true,
		noFillText:              true,
		noBorderText:            true,
		"":                      true,
	}

	end := rowFirstDefinition + definitionScanWindow
	if end > len(rows) {
		end = len(rows)
	}

	var values []string
	for row := rowFirstDefinition; row < end; row++ {
		v := cell(rows, row, col)
		key := strings.ToLower(v)
		if excluded[key] {
			continue
		}
		if !definitionValueAllowed(v, kind) {
			continue
		}
		excluded[key] = true
		values = append(values, v)
	}
	return values
}

// definitionValueAllowed rejects pure numbers for name-based kinds;
// id-based kinds (zip, tract, block, blockgroup) are numeric by nature.
func definitionValueAllowed(v string, kind marketarea.Kind) bool {
	switch kind {
	case marketarea.KindZip, marketarea.KindBlock, marketarea.KindBlockGroup, marketarea.KindTract:
		return true
	}
	if _, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64); err == nil {
		return false
	}
	return true
}

// baseStyle returns the starting style for a kind: the configured preset
// when one exists, the shared default otherwise.
func baseStyle(kind marketarea.Kind, opts Options) marketarea.StyleSettings {
	if preset, ok := opts.StylePresets[kind]; ok {
		return preset
	}
	return marketarea.DefaultStyle()
}

func cell(rows [][]string, row, col int) string {
	if row < 0 || row >= len(rows) {
		return ""
	}
	r := rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}
