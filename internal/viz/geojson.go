package viz

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// GeoJSONWriter writes one FeatureCollection file per market area into a
// directory, named by the market area id.
type GeoJSONWriter struct {
	Dir string
}

// NewGeoJSONWriter creates the output directory if needed.
func NewGeoJSONWriter(dir string) (*GeoJSONWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "viz: create output dir %s", dir)
	}
	return &GeoJSONWriter{Dir: dir}, nil
}

func (w *GeoJSONWriter) Visualize(_ context.Context, ma *marketarea.MarketArea) error {
	fc := &geojson.FeatureCollection{}

	for _, loc := range ma.Locations {
		if loc.Geometry == nil {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       loc.ID,
			Geometry: loc.Geometry,
			Properties: map[string]any{
				"name":      loc.Name,
				"state":     loc.State,
				"ma_type":   string(ma.Kind),
				"fillColor": ma.Style.FillColor,
			},
		})
	}
	for i, p := range ma.RadiusPoints {
		fc.Features = append(fc.Features, pointFeature(ma, i, p, map[string]any{"radius": p.Radius}))
	}
	for i, p := range ma.DriveTimePoints {
		fc.Features = append(fc.Features, pointFeature(ma, i, p, map[string]any{"minutes": p.Minutes}))
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrapf(err, "viz: marshal %s", ma.ID)
	}

	path := filepath.Join(w.Dir, ma.ID+".geojson")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "viz: write %s", path)
	}
	return nil
}

func pointFeature(ma *marketarea.MarketArea, idx int, p marketarea.Point, extra map[string]any) *geojson.Feature {
	props := map[string]any{
		"name":    ma.Name,
		"ma_type": string(ma.Kind),
	}
	for k, v := range extra {
		props[k] = v
	}
	return &geojson.Feature{
		ID:         fmt.Sprintf("%s-%d", ma.ID, idx),
		Geometry:   geom.NewPointFlat(geom.XY, []float64{p.Longitude, p.Latitude}),
		Properties: props,
	}
}
