package arcgis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestQuery(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		assert.Equal(t, "/counties/12/query", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"features": [
				{
					"attributes": {"NAME": "Orange County", "STATE_FIPS": "06", "GEOID": 6059},
					"geometry": {"rings": [[[-118.0, 33.6], [-117.4, 33.6], [-117.4, 33.9], [-118.0, 33.6]]]}
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{})
	features, err := client.Query(context.Background(), QueryRequest{
		LayerURL:          server.URL + "/counties/12",
		Where:             "STATE_FIPS = '06'",
		ReturnGeometry:    true,
		ResultRecordCount: 100,
		OutSR:             4326,
		GeometryPrecision: 6,
	})
	require.NoError(t, err)
	require.Len(t, features, 1)

	assert.Equal(t, "STATE_FIPS = '06'", gotForm.Get("where"))
	assert.Equal(t, "*", gotForm.Get("outFields"))
	assert.Equal(t, "true", gotForm.Get("returnGeometry"))
	assert.Equal(t, "100", gotForm.Get("resultRecordCount"))
	assert.Equal(t, "4326", gotForm.Get("outSR"))
	assert.Equal(t, "json", gotForm.Get("f"))

	f := features[0]
	assert.Equal(t, "Orange County", f.Attr("NAME"))
	assert.Equal(t, "06", f.Attr("STATE_FIPS"))

	poly, ok := f.Geometry.(*geom.Polygon)
	require.True(t, ok)
	assert.Equal(t, 1, poly.NumLinearRings())
}

func TestQueryServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// The service reports errors in-band with a 200 status.
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "Invalid where clause"}}`))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{})
	_, err := client.Query(context.Background(), QueryRequest{
		LayerURL: server.URL + "/zip/0",
		Where:    "garbage",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid where clause")
}

func TestQueryHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(ClientOptions{})
	_, err := client.Query(context.Background(), QueryRequest{
		LayerURL: server.URL + "/zip/0",
		Where:    "ZIP = '92675'",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestQueryPointGeometry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features": [{"attributes": {"ZIP": "92675"}, "geometry": {"x": -117.6, "y": 33.5}}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{})
	features, err := client.QueryRaw(context.Background(), server.URL+"/query", url.Values{"where": {"1=1"}})
	require.NoError(t, err)
	require.Len(t, features, 1)

	pt, ok := features[0].Geometry.(*geom.Point)
	require.True(t, ok)
	assert.InDelta(t, -117.6, pt.X(), 1e-9)
	assert.InDelta(t, 33.5, pt.Y(), 1e-9)
}

func TestAttr(t *testing.T) {
	f := Feature{Attributes: map[string]any{
		"GEOID":  "06059",
		"FIPS":   "",
		"TRACT":  float64(990100),
		"NEGONE": nil,
	}}

	assert.Equal(t, "06059", f.Attr("FIPS", "GEOID"))
	assert.Equal(t, "990100", f.Attr("TRACT"))
	assert.Equal(t, "", f.Attr("MISSING", "NEGONE"))
}

func TestRingsToPolygonSkipsDegenerate(t *testing.T) {
	poly, err := RingsToPolygon([][][]float64{
		{{0, 0}, {1, 1}}, // too few vertices
		{{0, 0}, {1, 0}, {1, 1}, {0, 0}},
	})
	require.NoError(t, err)
	require.NotNil(t, poly)
	assert.Equal(t, 1, poly.NumLinearRings())
}
