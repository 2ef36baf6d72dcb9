package arcgis

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"golang.org/x/time/rate"
)

// ClientOptions configures the HTTP client.
type ClientOptions struct {
	Timeout    time.Duration // per-request timeout, default 30s
	RatePerSec float64       // request rate cap, default 10/s
}

// Client is the HTTP QueryService implementation.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a feature service client.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RatePerSec == 0 {
		opts.RatePerSec = 10
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
	}
}

// Query issues a predicate against a feature layer's query endpoint.
func (c *Client) Query(ctx context.Context, req QueryRequest) ([]Feature, error) {
	if req.LayerURL == "" {
		return nil, eris.New("arcgis: layer URL is required")
	}
	if req.Where == "" {
		return nil, eris.New("arcgis: where clause is required")
	}

	outFields := req.OutFields
	if outFields == "" {
		outFields = "*"
	}

	form := url.Values{
		"where":          {req.Where},
		"outFields":      {outFields},
		"returnGeometry": {strconv.FormatBool(req.ReturnGeometry)},
		"f":              {"json"},
	}
	if req.ResultRecordCount > 0 {
		form.Set("resultRecordCount", strconv.Itoa(req.ResultRecordCount))
	}
	if req.OutSR > 0 {
		form.Set("outSR", strconv.Itoa(req.OutSR))
	}
	if req.GeometryPrecision > 0 {
		form.Set("geometryPrecision", strconv.Itoa(req.GeometryPrecision))
	}

	endpoint := strings.TrimRight(req.LayerURL, "/") + "/query"
	return c.QueryRaw(ctx, endpoint, form)
}

// QueryRaw posts a form to a query endpoint and decodes the feature set.
func (c *Client) QueryRaw(ctx context.Context, endpoint string, form url.Values) ([]Feature, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "arcgis: rate limit")
	}

	if form.Get("f") == "" {
		form.Set("f", "json")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "arcgis: build request")
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "arcgis: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("arcgis: query returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "arcgis: read body")
	}

	return parseFeatureSet(body)
}

// featureSetResponse is the JSON shape of a query response. The service
// reports errors in-band with a 200 status.
type featureSetResponse struct {
	Features []struct {
		Attributes map[string]any  `json:"attributes"`
		Geometry   json.RawMessage `json:"geometry"`
	} `json:"features"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseFeatureSet(body []byte) ([]Feature, error) {
	var fs featureSetResponse
	if err := json.Unmarshal(body, &fs); err != nil {
		return nil, eris.Wrap(err, "arcgis: parse response")
	}
	if fs.Error != nil {
		return nil, eris.Errorf("arcgis: service error %d: %s", fs.Error.Code, fs.Error.Message)
	}

	features := make([]Feature, 0, len(fs.Features))
	for _, raw := range fs.Features {
		f := Feature{Attributes: raw.Attributes}
		if len(raw.Geometry) > 0 {
			g, err := parseGeometry(raw.Geometry)
			if err != nil {
				return nil, err
			}
			f.Geometry = g
		}
		features = append(features, f)
	}
	return features, nil
}

// esriGeometry covers the two geometry encodings the pipeline consumes:
// polygon rings and points.
type esriGeometry struct {
	Rings [][][]float64 `json:"rings"`
	X     *float64      `json:"x"`
	Y     *float64      `json:"y"`
}

func parseGeometry(raw json.RawMessage) (geom.T, error) {
	var eg esriGeometry
	if err := json.Unmarshal(raw, &eg); err != nil {
		return nil, eris.Wrap(err, "arcgis: parse geometry")
	}

	if len(eg.Rings) > 0 {
		poly, err := RingsToPolygon(eg.Rings)
		if err != nil || poly == nil {
			return nil, err
		}
		return poly, nil
	}
	if eg.X != nil && eg.Y != nil {
		return geom.NewPointFlat(geom.XY, []float64{*eg.X, *eg.Y}), nil
	}
	return nil, nil
}

// RingsToPolygon converts esri polygon rings into a go-geom Polygon.
// Degenerate rings (fewer than 3 vertices) are skipped.
func RingsToPolygon(rings [][][]float64) (*geom.Polygon, error) {
	poly := geom.NewPolygon(geom.XY)
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		flat := make([]float64, 0, len(ring)*2)
		for _, pt := range ring {
			if len(pt) < 2 {
				return nil, eris.New("arcgis: malformed ring coordinate")
			}
			flat = append(flat, pt[0], pt[1])
		}
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			return nil, eris.Wrap(err, "arcgis: build polygon ring")
		}
	}
	if poly.NumLinearRings() == 0 {
		return nil, nil
	}
	return poly, nil
}
