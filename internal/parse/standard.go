package parse

import (
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// columns holds the resolved column indices of the standard layout.
// Indices are -1 when the header is absent.
type columns struct {
	name            int
	shortName       int
	maType          int
	fillColor       int
	borderColor     int
	borderWidth     int
	opacity         int
	locations       int
	state           int
	driveTimePoints int
	radiusPoints    int
	latitude        int
	longitude       int
	radius          int
	minutes         int
	description     int
}

// ParseStandard extracts drafts from the header-driven tabular layout.
// Colors, when provided, is the per-cell background color grid from the
// workbook; a true cell background takes precedence over cell text when
// deriving style colors.
func ParseStandard(rows [][]string, colors [][]string, opts Options) ([]marketarea.Draft, error) {
	opts.defaults()
	if len(rows) == 0 {
		return nil, NewParseError("standard input has no rows")
	}

	log := zap.L().Named("parse")

	headerIdx := firstNonEmptyRow(rows)
	if headerIdx < 0 {
		return nil, NewParseError("standard input has no header row")
	}

	cols := locateColumns(rows[headerIdx])
	if cols.name < 0 {
		return nil, NewParseError("standard layout is missing a Name column")
	}
	if cols.maType < 0 {
		return nil, NewParseError("standard layout is missing a Type column")
	}

	var drafts []marketarea.Draft
	for rowIdx := headerIdx + 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]

		name := cellAt(row, cols.name)
		rawType := cellAt(row, cols.maType)
		if name == "" || rawType == "" {
			continue
		}

		kind, ok := Classify(rawType, opts.Policy, opts.Supported)
		if !ok {
			log.Warn("standard: skipping row with unsupported type",
				zap.Int("row", rowIdx),
				zap.String("name", name),
				zap.String("type", rawType),
			)
			continue
		}

		draft := marketarea.Draft{
			Name:        name,
			ShortName:   cellAt(row, cols.shortName),
			Kind:        kind,
			Style:       standardStyle(row, rowColors(colors, rowIdx), cols, kind, opts),
			Description: cellAt(row, cols.description),
			ProjectID:   opts.ProjectID,
		}

		state := cellAt(row, cols.state)
		if state == "" {
			state = opts.DefaultState
		}

		switch kind {
		case marketarea.KindRadius:
			draft.RadiusPoints = standardPoints(row, cols, kind, opts)
		case marketarea.KindDriveTime:
			draft.DriveTimePoints = standardPoints(row, cols, kind, opts)
		default:
			locs := parseLocationsCell(cellAt(row, cols.locations), state)
			if len(locs) == 0 {
				// A row with no locations cell still names one geography.
				locs = []marketarea.Location{{ID: name, Name: name, State: state}}
			}
			draft.Locations = locs
		}

		drafts = append(drafts, draft)
	}

	return drafts, nil
}

// locateColumns matches headers by case-insensitive substring rules.
func locateColumns(header []string) columns {
	cols := columns{
		name: -1, shortName: -1, maType: -1, fillColor: -1, borderColor: -1,
		borderWidth: -1, opacity: -1, locations: -1, state: -1,
		driveTimePoints: -1, radiusPoints: -1, latitude: -1, longitude: -1,
		radius: -1, minutes: -1, description: -1,
	}

	for i, raw := range header {
		h := strings.ToLower(strings.TrimSpace(raw))
		if h == "" {
			continue
		}
		has := func(sub string) bool { return strings.Contains(h, sub) }

		switch {
		case has("short") && has("name"):
			set(&cols.shortName, i)
		case has("name"):
			set(&cols.name, i)
		case has("type"):
			set(&cols.maType, i)
		case has("fill") && has("color"):
			set(&cols.fillColor, i)
		case (has("border") || has("outline")) && has("color"):
			set(&cols.borderColor, i)
		case (has("border") || has("outline")) && (has("width") || has("weight")):
			set(&cols.borderWidth, i)
		case has("opacity") || has("transparency"):
			set(&cols.opacity, i)
		case has("drive") && has("point"):
			set(&cols.driveTimePoints, i)
		case has("radius") && has("point"):
			set(&cols.radiusPoints, i)
		case has("location") || has("areas"):
			set(&cols.locations, i)
		case has("state"):
			set(&cols.state, i)
		case has("latitude") || h == "lat":
			set(&cols.latitude, i)
		case has("longitude") || h == "lon" || h == "lng":
			set(&cols.longitude, i)
		case has("radius"):
			set(&cols.radius, i)
		case has("minute") || h == "time":
			set(&cols.minutes, i)
		case has("description"):
			set(&cols.description, i)
		}
	}
	return cols
}

// set assigns only the first matching header for each column.
func set(dst *int, idx int) {
	if *dst < 0 {
		*dst = idx
	}
}

// standardStyle derives style settings from the row. Source priority per
// color: explicit no-fill/no-border text, then the true cell background,
// then the cell text.
func standardStyle(row []string, colors []string, cols columns, kind marketarea.Kind, opts Options) marketarea.StyleSettings {
	style := baseStyle(kind, opts)

	if cols.fillColor >= 0 {
		text := cellAt(row, cols.fillColor)
		if IsNoFill(text) {
			style.NoFill = true
		} else if bg := cellAt(colors, cols.fillColor); bg != "" {
			style.FillColor = bg
		} else {
			applyFillCell(&style, text)
		}
	}
	if cols.borderColor >= 0 {
		text := cellAt(row, cols.borderColor)
		if IsNoBorder(text) {
			style.NoBorder = true
		} else if bg := cellAt(colors, cols.borderColor); bg != "" {
			style.BorderColor = bg
		} else {
			applyBorderColorCell(&style, text)
		}
	}
	if !style.NoFill && cols.opacity >= 0 {
		if opacity, ok := ParseOpacity(cellAt(row, cols.opacity), opts.OpacityMode); ok {
			style.FillOpacity = opacity
		}
	}
	if !style.NoBorder && cols.borderWidth >= 0 {
		if width, ok := ParseBorderWidth(cellAt(row, cols.borderWidth)); ok {
			style.BorderWidth = width
		}
	}

	style.Normalize()
	return style
}

// standardPoints reads radius/drive-time origins: a structured JSON points
// column when present, otherwise a point synthesized from separate
// lat/lon/amount columns, otherwise the fixed default point.
func standardPoints(row []string, cols columns, kind marketarea.Kind, opts Options) []marketarea.Point {
	pointsCol := cols.radiusPoints
	if kind == marketarea.KindDriveTime {
		pointsCol = cols.driveTimePoints
	}

	if raw := cellAt(row, pointsCol); raw != "" {
		if points := parsePointsJSON(raw, kind, opts); len(points) > 0 {
			return points
		}
	}

	point := marketarea.Point{
		Latitude:  opts.FallbackLatitude,
		Longitude: opts.FallbackLongitude,
	}
	if lat, err := strconv.ParseFloat(cellAt(row, cols.latitude), 64); err == nil {
		point.Latitude = lat
	}
	if lon, err := strconv.ParseFloat(cellAt(row, cols.longitude), 64); err == nil {
		point.Longitude = lon
	}

	if kind == marketarea.KindRadius {
		point.Radius = opts.DefaultRadiusMiles
		if r, err := strconv.ParseFloat(cellAt(row, cols.radius), 64); err == nil && r > 0 {
			point.Radius = r
		}
	} else {
		point.Minutes = opts.DefaultDriveMinutes
		if m, err := strconv.ParseFloat(cellAt(row, cols.minutes), 64); err == nil && m > 0 {
			point.Minutes = m
		}
	}
	return []marketarea.Point{point}
}

// jsonPoint tolerates the field name variants seen in exported workbooks.
type jsonPoint struct {
	Latitude  *float64 `json:"latitude"`
	Lat       *float64 `json:"lat"`
	Longitude *float64 `json:"longitude"`
	Lon       *float64 `json:"lon"`
	Lng       *float64 `json:"lng"`
	Radius    *float64 `json:"radius"`
	Minutes   *float64 `json:"minutes"`
	Time      *float64 `json:"time"`
}

func parsePointsJSON(raw string, kind marketarea.Kind, opts Options) []marketarea.Point {
	var parsed []jsonPoint
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		// A single object is accepted too.
		var one jsonPoint
		if err := json.Unmarshal([]byte(raw), &one); err != nil {
			return nil
		}
		parsed = []jsonPoint{one}
	}

	var points []marketarea.Point
	for _, jp := range parsed {
		p := marketarea.Point{
			Latitude:  opts.FallbackLatitude,
			Longitude: opts.FallbackLongitude,
		}
		if jp.Latitude != nil {
			p.Latitude = *jp.Latitude
		} else if jp.Lat != nil {
			p.Latitude = *jp.Lat
		}
		if jp.Longitude != nil {
			p.Longitude = *jp.Longitude
		} else if jp.Lon != nil {
			p.Longitude = *jp.Lon
		} else if jp.Lng != nil {
			p.Longitude = *jp.Lng
		}

		if kind == marketarea.KindRadius {
			p.Radius = opts.DefaultRadiusMiles
			if jp.Radius != nil && *jp.Radius > 0 {
				p.Radius = *jp.Radius
			}
		} else {
			p.Minutes = opts.DefaultDriveMinutes
			if jp.Minutes != nil && *jp.Minutes > 0 {
				p.Minutes = *jp.Minutes
			} else if jp.Time != nil && *jp.Time > 0 {
				p.Minutes = *jp.Time
			}
		}
		points = append(points, p)
	}
	return points
}

// jsonLocation tolerates the location object variants seen in exports.
type jsonLocation struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// parseLocationsCell parses a locations cell: a JSON array (of strings or
// objects) first, comma-separated tokens second. Every location lacking a
// state gets the default attached.
func parseLocationsCell(raw, defaultState string) []marketarea.Location {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasPrefix(raw, "[") {
		var objs []jsonLocation
		if err := json.Unmarshal([]byte(raw), &objs); err == nil {
			return locationsFromObjects(objs, defaultState)
		}
		var strs []string
		if err := json.Unmarshal([]byte(raw), &strs); err == nil {
			return locationsFromTokens(strs, defaultState)
		}
	}

	return locationsFromTokens(strings.Split(raw, ","), defaultState)
}

func locationsFromObjects(objs []jsonLocation, defaultState string) []marketarea.Location {
	var locs []marketarea.Location
	for _, o := range objs {
		id := strings.TrimSpace(o.ID)
		name := strings.TrimSpace(o.Name)
		if id == "" {
			id = name
		}
		if name == "" {
			name = id
		}
		if id == "" {
			continue
		}
		state := strings.TrimSpace(o.State)
		if state == "" {
			state = defaultState
		}
		locs = append(locs, marketarea.Location{ID: id, Name: name, State: state})
	}
	return locs
}

func locationsFromTokens(tokens []string, defaultState string) []marketarea.Location {
	var locs []marketarea.Location
	for _, tok := range tokens {
		v := strings.TrimSpace(tok)
		if v == "" {
			continue
		}
		locs = append(locs, marketarea.Location{ID: v, Name: v, State: defaultState})
	}
	return locs
}

func firstNonEmptyRow(rows [][]string) int {
	for i, row := range rows {
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				return i
			}
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func rowColors(colors [][]string, rowIdx int) []string {
	if rowIdx < 0 || rowIdx >= len(colors) {
		return nil
	}
	return colors[rowIdx]
}
