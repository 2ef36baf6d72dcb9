package resolve

import (
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/geo"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/pkg/arcgis"
)

// Half-width in degrees of the placeholder square drawn for blocks and
// block groups that never resolve. Roughly a small-neighborhood box.
const placeholderHalfWidth = 0.01

// synthesize builds placeholder features when every query strategy came
// back empty: a stored extent wins, then blocks and block groups get a
// small square on their state centroid.
func (r *Resolver) synthesize(d *marketarea.Draft) []arcgis.Feature {
	if d.Extent != nil {
		r.log.Info("synthesizing geometry from stored extent", zap.String("draft", d.Name))
		return []arcgis.Feature{extentFeature(d)}
	}

	if d.Kind != marketarea.KindBlock && d.Kind != marketarea.KindBlockGroup {
		return nil
	}

	state := ""
	if len(d.Locations) > 0 {
		state = d.Locations[0].State
	}
	c := geo.StateCentroid(state)
	r.log.Info("synthesizing centroid placeholder",
		zap.String("draft", d.Name),
		zap.String("state", state),
	)

	return []arcgis.Feature{{
		Attributes: map[string]any{
			"NAME":        d.Name,
			"GEOID":       firstLocationID(d),
			"synthesized": true,
		},
		Geometry: rectangle(
			c.Longitude-placeholderHalfWidth, c.Latitude-placeholderHalfWidth,
			c.Longitude+placeholderHalfWidth, c.Latitude+placeholderHalfWidth,
		),
	}}
}

func extentFeature(d *marketarea.Draft) arcgis.Feature {
	b := d.Extent
	return arcgis.Feature{
		Attributes: map[string]any{
			"NAME":        d.Name,
			"synthesized": true,
		},
		Geometry: rectangle(b.Min(0), b.Min(1), b.Max(0), b.Max(1)),
	}
}

// rectangle builds a closed axis-aligned polygon from two corners.
func rectangle(minX, minY, maxX, maxY float64) *geom.Polygon {
	coords := []float64{
		minX, minY,
		maxX, minY,
		maxX, maxY,
		minX, maxY,
		minX, minY,
	}
	return geom.NewPolygonFlat(geom.XY, coords, []int{len(coords)})
}

func firstLocationID(d *marketarea.Draft) string {
	if len(d.Locations) == 0 {
		return ""
	}
	return d.Locations[0].ID
}
