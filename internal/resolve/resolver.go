// Package resolve turns drafts into feature service geometry: it builds
// per-kind predicates, queries the feature service, matches results back
// to locations, and synthesizes placeholder geometry when every query
// strategy fails.
package resolve

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/geo"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/pkg/arcgis"
)

// Options tunes the resolver's query parameters.
type Options struct {
	// ResultRecordCount caps every layer query. Defaults to 100.
	ResultRecordCount int
	// OutSR is the requested spatial reference. Defaults to 4326.
	OutSR int
	// GeometryPrecision bounds coordinate decimals. Defaults to 6.
	GeometryPrecision int
	// MDFallbackEndpoint overrides the metro division fallback query URL.
	MDFallbackEndpoint string
}

func (o *Options) defaults() {
	if o.ResultRecordCount == 0 {
		o.ResultRecordCount = 100
	}
	if o.OutSR == 0 {
		o.OutSR = 4326
	}
	if o.GeometryPrecision == 0 {
		o.GeometryPrecision = 6
	}
	if o.MDFallbackEndpoint == "" {
		o.MDFallbackEndpoint = MDFallbackEndpoint
	}
}

// Resolver queries feature layers for draft geometry.
type Resolver struct {
	svc    arcgis.QueryService
	layers Layers
	opts   Options
	log    *zap.Logger
}

// New builds a resolver over the given query service. A nil layers map
// falls back to the TIGERweb defaults.
func New(svc arcgis.QueryService, layers Layers, opts Options) *Resolver {
	if layers == nil {
		layers = DefaultLayers()
	}
	opts.defaults()
	return &Resolver{
		svc:    svc,
		layers: layers,
		opts:   opts,
		log:    zap.L().Named("resolve"),
	}
}

// Resolve returns candidate features for a draft. Query failures are
// logged, never propagated; an empty (or synthesized) result is always a
// valid outcome, so a batch can continue past any service outage.
func (r *Resolver) Resolve(ctx context.Context, d *marketarea.Draft) []arcgis.Feature {
	if !d.Kind.UsesLocations() || len(d.Locations) == 0 {
		return nil
	}

	where := predicateFor(d)
	features, err := r.queryLayers(ctx, r.layers[d.Kind], where)
	if err != nil {
		r.log.Warn("layer query failed",
			zap.String("draft", d.Name),
			zap.String("kind", string(d.Kind)),
			zap.Error(err),
		)
	}

	if d.Kind == marketarea.KindMD && len(features) == 0 {
		features = r.mdFallback(ctx, d)
	}

	if len(features) == 0 {
		features = r.synthesize(d)
	}
	return features
}

// queryLayers fans a predicate out across a kind's sub-layers and merges
// the results in layer order.
func (r *Resolver) queryLayers(ctx context.Context, layers []string, where string) ([]arcgis.Feature, error) {
	if len(layers) == 0 || where == "" {
		return nil, nil
	}

	results := make([][]arcgis.Feature, len(layers))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, layer := range layers {
		g.Go(func() error {
			features, err := r.svc.Query(gctx, arcgis.QueryRequest{
				LayerURL:          layer,
				Where:             where,
				OutFields:         "*",
				ReturnGeometry:    true,
				ResultRecordCount: r.opts.ResultRecordCount,
				OutSR:             r.opts.OutSR,
				GeometryPrecision: r.opts.GeometryPrecision,
			})
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = features
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	var merged []arcgis.Feature
	for _, fs := range results {
		merged = append(merged, fs...)
	}
	return merged, err
}

// mdFallback issues a broader form-encoded query against the metro
// division layer: the full cleaned name, each city part, and any known
// city to county synonyms, OR'd together under the division code filter.
func (r *Resolver) mdFallback(ctx context.Context, d *marketarea.Draft) []arcgis.Feature {
	loc := d.Locations[0]
	cleaned := cleanMDName(loc.Name)
	parts := splitMDParts(cleaned)

	terms := []string{cleaned}
	terms = append(terms, parts...)
	for _, part := range parts {
		if county, ok := cityToCounty[part]; ok {
			terms = append(terms, county)
		}
	}

	var clauses []string
	seen := map[string]bool{}
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		clauses = append(clauses, nameContains(term))
	}
	if len(clauses) == 0 {
		return nil
	}
	where := fmt.Sprintf("(%s) AND MTFCC = '%s'", strings.Join(clauses, " OR "), metroDivisionCode)

	form := url.Values{}
	form.Set("where", where)
	form.Set("outFields", "*")
	form.Set("returnGeometry", "true")
	form.Set("f", "json")
	form.Set("resultRecordCount", fmt.Sprint(r.opts.ResultRecordCount))
	form.Set("outSR", fmt.Sprint(r.opts.OutSR))

	features, err := r.svc.QueryRaw(ctx, r.opts.MDFallbackEndpoint, form)
	if err != nil {
		r.log.Warn("metro division fallback query failed",
			zap.String("draft", d.Name),
			zap.Error(err),
		)
		return nil
	}
	return features
}

// predicateFor builds the per-kind where clause covering every location
// of the draft.
func predicateFor(d *marketarea.Draft) string {
	switch d.Kind {
	case marketarea.KindZip:
		var clauses []string
		for _, loc := range d.Locations {
			id := escape(loc.ID)
			// The LIKE variant tolerates ids whose leading zeros were
			// stripped by the spreadsheet.
			clauses = append(clauses, fmt.Sprintf("(ZCTA5 = '%s' OR ZCTA5 LIKE '%%%s')", id, id))
		}
		return strings.Join(clauses, " OR ")

	case marketarea.KindCounty:
		var clauses []string
		for _, loc := range d.Locations {
			name := stripCountySuffix(loc.Name)
			clause := nameContains(name)
			if fips := geo.StateFIPS(loc.State); fips != "" {
				clause = fmt.Sprintf("(%s AND STATE = '%s')", clause, fips)
			}
			clauses = append(clauses, clause)
		}
		return strings.Join(clauses, " OR ")

	case marketarea.KindPlace:
		var clauses []string
		for _, loc := range d.Locations {
			name := stripPlaceSuffix(loc.Name)
			clause := nameContains(name)
			if fips := geo.StateFIPS(loc.State); fips != "" {
				clause = fmt.Sprintf("(%s AND STATE = '%s')", clause, fips)
			}
			clauses = append(clauses, clause)
		}
		return strings.Join(clauses, " OR ")

	case marketarea.KindMD:
		var clauses []string
		for _, loc := range d.Locations {
			cleaned := cleanMDName(loc.Name)
			parts := splitMDParts(cleaned)
			if len(parts) > 1 {
				var sub []string
				for _, part := range parts {
					sub = append(sub, nameContains(part))
				}
				clauses = append(clauses, "("+strings.Join(sub, " OR ")+")")
			} else {
				clauses = append(clauses, nameContains(cleaned))
			}
		}
		return fmt.Sprintf("(%s) AND MTFCC = '%s'", strings.Join(clauses, " OR "), metroDivisionCode)

	case marketarea.KindTract:
		var clauses []string
		for _, loc := range d.Locations {
			clauses = append(clauses, fmt.Sprintf("GEOID = '%s'", escape(loc.ID)))
		}
		return strings.Join(clauses, " OR ")

	default:
		var clauses []string
		for _, loc := range d.Locations {
			clauses = append(clauses, fmt.Sprintf("GEOID = '%s'", escape(loc.ID)))
		}
		return strings.Join(clauses, " OR ")
	}
}

// nameContains builds a case-folded substring match on NAME.
func nameContains(term string) string {
	return fmt.Sprintf("UPPER(NAME) LIKE '%%%s%%'", strings.ToUpper(escape(term)))
}

func escape(v string) string {
	return strings.ReplaceAll(strings.TrimSpace(v), "'", "''")
}
