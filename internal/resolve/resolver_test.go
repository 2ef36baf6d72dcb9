package resolve

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/pkg/arcgis"
)

// fakeService records queries and serves canned per-layer results.
type fakeService struct {
	mu sync.Mutex

	requests []arcgis.QueryRequest
	byLayer  map[string][]arcgis.Feature
	queryErr error

	rawEndpoint string
	rawForm     url.Values
	rawFeatures []arcgis.Feature
	rawErr      error
}

func (f *fakeService) Query(_ context.Context, req arcgis.QueryRequest) ([]arcgis.Feature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.byLayer[req.LayerURL], nil
}

func (f *fakeService) QueryRaw(_ context.Context, endpoint string, form url.Values) ([]arcgis.Feature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rawEndpoint = endpoint
	f.rawForm = form
	return f.rawFeatures, f.rawErr
}

func zipDraft(ids ...string) *marketarea.Draft {
	d := &marketarea.Draft{Name: "Zips", Kind: marketarea.KindZip}
	for _, id := range ids {
		d.Locations = append(d.Locations, marketarea.Location{ID: id, Name: id, State: "CA"})
	}
	return d
}

func TestResolveZipPredicate(t *testing.T) {
	svc := &fakeService{byLayer: map[string][]arcgis.Feature{
		"http://svc/zip": {feat(map[string]any{"ZCTA5": "92675"})},
	}}
	r := New(svc, Layers{marketarea.KindZip: {"http://svc/zip"}}, Options{})

	features := r.Resolve(context.Background(), zipDraft("92675", "501"))
	require.Len(t, features, 1)

	require.Len(t, svc.requests, 1)
	req := svc.requests[0]
	assert.Contains(t, req.Where, "ZCTA5 = '92675'")
	assert.Contains(t, req.Where, "ZCTA5 LIKE '%501'")
	assert.Equal(t, "*", req.OutFields)
	assert.True(t, req.ReturnGeometry)
	assert.Equal(t, 100, req.ResultRecordCount)
	assert.Equal(t, 4326, req.OutSR)
}

func TestResolveCountyPredicate(t *testing.T) {
	svc := &fakeService{byLayer: map[string][]arcgis.Feature{}}
	r := New(svc, Layers{marketarea.KindCounty: {"http://svc/county"}}, Options{})

	d := &marketarea.Draft{
		Name: "Orange",
		Kind: marketarea.KindCounty,
		Locations: []marketarea.Location{
			{ID: "Orange County", Name: "Orange County", State: "CA"},
		},
	}
	r.Resolve(context.Background(), d)

	require.Len(t, svc.requests, 1)
	where := svc.requests[0].Where
	assert.Contains(t, where, "UPPER(NAME) LIKE '%ORANGE%'")
	assert.Contains(t, where, "STATE = '06'")
	assert.NotContains(t, where, "COUNTY%", "suffix must be stripped from the match term")
}

func TestResolvePlaceFanOut(t *testing.T) {
	svc := &fakeService{byLayer: map[string][]arcgis.Feature{
		"http://svc/place": {feat(map[string]any{"NAME": "Irvine city"})},
		"http://svc/cdp":   {feat(map[string]any{"NAME": "Irvine CDP"})},
	}}
	r := New(svc, Layers{marketarea.KindPlace: {"http://svc/place", "http://svc/cdp"}}, Options{})

	d := &marketarea.Draft{
		Name:      "Irvine",
		Kind:      marketarea.KindPlace,
		Locations: []marketarea.Location{{ID: "Irvine", Name: "Irvine", State: "CA"}},
	}
	features := r.Resolve(context.Background(), d)

	require.Len(t, features, 2)
	// Sub-layer order is preserved in the merge regardless of completion order.
	assert.Equal(t, "Irvine city", features[0].Attr("NAME"))
	assert.Equal(t, "Irvine CDP", features[1].Attr("NAME"))
	assert.Len(t, svc.requests, 2)
}

func TestResolveMDPredicateAndFallback(t *testing.T) {
	svc := &fakeService{
		byLayer: map[string][]arcgis.Feature{},
		rawFeatures: []arcgis.Feature{
			feat(map[string]any{"NAME": "Los Angeles-Long Beach-Glendale Metropolitan Division", "MTFCC": "G3120"}),
		},
	}
	r := New(svc, Layers{marketarea.KindMD: {"http://svc/md"}}, Options{
		MDFallbackEndpoint: "http://svc/md-fallback/query",
	})

	d := &marketarea.Draft{
		Name: "LA Division",
		Kind: marketarea.KindMD,
		Locations: []marketarea.Location{{
			ID:    "Los Angeles-Long Beach-Glendale, CA Metro Division",
			Name:  "Los Angeles-Long Beach-Glendale, CA Metro Division",
			State: "CA",
		}},
	}
	features := r.Resolve(context.Background(), d)
	require.Len(t, features, 1)

	// Primary predicate ORs the city parts under the division code filter.
	require.Len(t, svc.requests, 1)
	where := svc.requests[0].Where
	assert.Contains(t, where, "LONG BEACH")
	assert.Contains(t, where, "MTFCC = 'G3120'")

	// Empty primary result triggered the fallback.
	assert.Equal(t, "http://svc/md-fallback/query", svc.rawEndpoint)
	rawWhere := svc.rawForm.Get("where")
	assert.Contains(t, rawWhere, "LOS ANGELES-LONG BEACH-GLENDALE")
	assert.Contains(t, rawWhere, "MTFCC = 'G3120'")
	assert.Equal(t, "json", svc.rawForm.Get("f"))
	assert.Equal(t, "true", svc.rawForm.Get("returnGeometry"))
}

func TestResolveMDFallbackIncludesCountySynonyms(t *testing.T) {
	svc := &fakeService{byLayer: map[string][]arcgis.Feature{}}
	r := New(svc, Layers{marketarea.KindMD: {"http://svc/md"}}, Options{})

	d := &marketarea.Draft{
		Name: "Anaheim Division",
		Kind: marketarea.KindMD,
		Locations: []marketarea.Location{{
			Name: "Anaheim-Santa Ana-Irvine, CA", State: "CA",
		}},
	}
	r.Resolve(context.Background(), d)

	assert.Contains(t, svc.rawForm.Get("where"), "ORANGE", "city to county synonym expected")
}

func TestResolveQueryErrorIsNonFatal(t *testing.T) {
	svc := &fakeService{queryErr: assert.AnError}
	r := New(svc, Layers{marketarea.KindZip: {"http://svc/zip"}}, Options{})

	features := r.Resolve(context.Background(), zipDraft("92675"))
	assert.Empty(t, features)
}

func TestResolveBlockGroupSynthesis(t *testing.T) {
	svc := &fakeService{byLayer: map[string][]arcgis.Feature{}}
	r := New(svc, Layers{marketarea.KindBlockGroup: {"http://svc/bg"}}, Options{})

	d := &marketarea.Draft{
		Name:      "Missing Group",
		Kind:      marketarea.KindBlockGroup,
		Locations: []marketarea.Location{{ID: "060590423081", State: "CA"}},
	}
	features := r.Resolve(context.Background(), d)

	require.Len(t, features, 1)
	f := features[0]
	assert.Equal(t, true, f.Attributes["synthesized"])
	assert.Equal(t, "060590423081", f.Attr("GEOID"))

	poly, ok := f.Geometry.(*geom.Polygon)
	require.True(t, ok)
	b := poly.Bounds()
	assert.InDelta(t, 37.1841, (b.Min(1)+b.Max(1))/2, 1e-6, "centered on the CA centroid")
	assert.InDelta(t, -119.4696, (b.Min(0)+b.Max(0))/2, 1e-6)
}

func TestResolveExtentPlaceholder(t *testing.T) {
	svc := &fakeService{byLayer: map[string][]arcgis.Feature{}}
	r := New(svc, Layers{marketarea.KindCounty: {"http://svc/county"}}, Options{})

	d := &marketarea.Draft{
		Name:      "Boxed",
		Kind:      marketarea.KindCounty,
		Locations: []marketarea.Location{{ID: "Nowhere", Name: "Nowhere", State: "CA"}},
		Extent:    geom.NewBounds(geom.XY).Set(-118.0, 33.0, -117.0, 34.0),
	}
	features := r.Resolve(context.Background(), d)

	require.Len(t, features, 1)
	poly, ok := features[0].Geometry.(*geom.Polygon)
	require.True(t, ok)
	b := poly.Bounds()
	assert.InDelta(t, -118.0, b.Min(0), 1e-9)
	assert.InDelta(t, 34.0, b.Max(1), 1e-9)
}

func TestResolveSkipsPointKinds(t *testing.T) {
	svc := &fakeService{}
	r := New(svc, nil, Options{})

	d := &marketarea.Draft{
		Name:         "Ring",
		Kind:         marketarea.KindRadius,
		RadiusPoints: []marketarea.Point{{Latitude: 33, Longitude: -117, Radius: 5}},
	}
	assert.Nil(t, r.Resolve(context.Background(), d))
	assert.Empty(t, svc.requests)
}
