package geo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeStateShapefile writes a minimal point shapefile with a STUSPS
// attribute. Centroid generation only looks at bounding boxes, so point
// geometry is enough.
func writeStateShapefile(t *testing.T, states map[string][2]float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "states.shp")

	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("STUSPS", 2),
		shp.StringField("NAME", 100),
	}))

	row := 0
	for abbr, pt := range states {
		w.Write(&shp.Point{X: pt[0], Y: pt[1]})
		require.NoError(t, w.WriteAttribute(row, 0, abbr))
		require.NoError(t, w.WriteAttribute(row, 1, StateName(abbr)))
		row++
	}
	w.Close()
	return path
}

func TestGenerateCentroids(t *testing.T) {
	path := writeStateShapefile(t, map[string][2]float64{
		"CA": {-119.4696, 37.1841},
		"NV": {-116.6312, 39.3289},
	})

	centroids, err := GenerateCentroids(path)
	require.NoError(t, err)
	require.Len(t, centroids, 2)
	assert.InDelta(t, 37.1841, centroids["CA"].Latitude, 1e-6)
	assert.InDelta(t, -119.4696, centroids["CA"].Longitude, 1e-6)
}

func TestGenerateCentroidsMissingFile(t *testing.T) {
	_, err := GenerateCentroids(filepath.Join(t.TempDir(), "nope.shp"))
	require.Error(t, err)
}

func TestWriteCentroidsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "centroids.json")
	centroids := map[string]Centroid{
		"TX": {Latitude: 31.4757, Longitude: -99.3312},
	}
	require.NoError(t, WriteCentroidsJSON(path, centroids))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.InDelta(t, 31.4757, got["TX"].Latitude, 1e-6)
}
