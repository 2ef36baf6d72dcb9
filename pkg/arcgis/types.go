// Package arcgis is a minimal client for ArcGIS feature service query
// endpoints, returning typed features with go-geom geometries.
package arcgis

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/twpayne/go-geom"
)

// Feature is one query result: a geometry plus its attribute map. Features
// are transient; they are matched against locations and then discarded.
type Feature struct {
	Attributes map[string]any
	Geometry   geom.T
}

// Attr returns the first non-empty attribute among keys, as a trimmed
// string. Numeric attributes are formatted without an exponent.
func (f Feature) Attr(keys ...string) string {
	for _, key := range keys {
		v, ok := f.Attributes[key]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = strings.TrimSpace(t)
		case float64:
			s = strings.TrimSuffix(fmt.Sprintf("%.0f", t), ".")
		default:
			s = strings.TrimSpace(fmt.Sprint(t))
		}
		if s != "" {
			return s
		}
	}
	return ""
}

// QueryRequest describes one feature service query.
type QueryRequest struct {
	LayerURL          string // layer endpoint, without the trailing /query
	Where             string
	OutFields         string // defaults to "*"
	ReturnGeometry    bool
	ResultRecordCount int
	OutSR             int
	GeometryPrecision int
}

// QueryService is the feature query collaborator used by the resolver.
type QueryService interface {
	// Query issues a predicate against a feature layer.
	Query(ctx context.Context, req QueryRequest) ([]Feature, error)

	// QueryRaw posts an arbitrary form to a query endpoint. Used by the
	// metro division fallback path, which targets a fixed well-known layer.
	QueryRaw(ctx context.Context, endpoint string, form url.Values) ([]Feature, error)
}
