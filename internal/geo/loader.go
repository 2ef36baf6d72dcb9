package geo

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/db"
)

// StateShapefileURL is the TIGER/Line national state boundary archive
// the centroid table is regenerated from.
const StateShapefileURL = "https://www2.census.gov/geo/tiger/TIGER2024/STATE/tl_2024_us_state.zip"

// GenerateCentroids reads a TIGER/Line state shapefile and computes a
// bounding-box centroid per USPS state abbreviation. The bbox midpoint
// is what the block synthesis fallback expects, not a true interior
// point.
func GenerateCentroids(shpPath string) (map[string]Centroid, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	stuspsIdx := fieldIndex(reader, "STUSPS")
	if stuspsIdx < 0 {
		return nil, eris.New("geo: shapefile has no STUSPS field")
	}

	centroids := make(map[string]Centroid)
	for reader.Next() {
		_, shape := reader.Shape()
		if shape == nil {
			continue
		}

		abbr := strings.TrimSpace(reader.Attribute(stuspsIdx))
		if abbr == "" {
			continue
		}

		box := shape.BBox()
		centroids[abbr] = Centroid{
			Latitude:  (box.MinY + box.MaxY) / 2,
			Longitude: (box.MinX + box.MaxX) / 2,
		}
	}

	if len(centroids) == 0 {
		return nil, eris.Errorf("geo: no state records in %s", shpPath)
	}

	zap.L().Info("state centroids generated", zap.Int("states", len(centroids)))
	return centroids, nil
}

// WriteCentroidsJSON writes the centroid table as a JSON object keyed by
// state abbreviation, with keys sorted for stable diffs.
func WriteCentroidsJSON(path string, centroids map[string]Centroid) error {
	type entry struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}

	states := make([]string, 0, len(centroids))
	for abbr := range centroids {
		states = append(states, abbr)
	}
	sort.Strings(states)

	ordered := make(map[string]entry, len(centroids))
	for _, abbr := range states {
		c := centroids[abbr]
		ordered[abbr] = entry{Latitude: c.Latitude, Longitude: c.Longitude}
	}

	data, err := json.MarshalIndent(ordered, "", "  ")
	if err != nil {
		return eris.Wrap(err, "geo: marshal centroids")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrapf(err, "geo: write %s", path)
	}
	return nil
}

// LoadCentroids upserts the centroid table into reference.state_centroids
// so other tooling can join against it.
func LoadCentroids(ctx context.Context, pool db.Pool, centroids map[string]Centroid) (int64, error) {
	if _, err := pool.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS reference`); err != nil {
		return 0, eris.Wrap(err, "geo: create reference schema")
	}
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS reference.state_centroids (
			state     TEXT PRIMARY KEY,
			latitude  DOUBLE PRECISION NOT NULL,
			longitude DOUBLE PRECISION NOT NULL
		)`); err != nil {
		return 0, eris.Wrap(err, "geo: create state_centroids table")
	}

	rows := make([][]any, 0, len(centroids))
	for abbr, c := range centroids {
		rows = append(rows, []any{abbr, c.Latitude, c.Longitude})
	}

	return db.BulkUpsert(ctx, pool, db.UpsertConfig{
		Table:        "reference.state_centroids",
		Columns:      []string{"state", "latitude", "longitude"},
		ConflictKeys: []string{"state"},
	}, rows)
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}
