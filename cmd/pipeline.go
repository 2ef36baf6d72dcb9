package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/importer"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/parse"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/resolve"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/store"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/viz"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/pkg/arcgis"
)

// pipelineEnv bundles the wired import pipeline for a command run.
type pipelineEnv struct {
	Store     store.Store
	Importer  *importer.Importer
	ParseOpts parse.Options
}

// initPipeline builds the store, resolver, visualizer, and importer from
// the loaded configuration.
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := newStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	parseOpts, err := cfg.ParseOptions()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	client := arcgis.NewClient(arcgis.ClientOptions{
		Timeout:    cfg.Timeout(),
		RatePerSec: cfg.FeatureService.RatePerSec,
	})
	resolver := resolve.New(client, cfg.Layers(), cfg.ResolveOptions())

	var visualizer viz.Visualizer = viz.NewLogVisualizer()
	if cfg.Viz.Enabled {
		writer, err := viz.NewGeoJSONWriter(cfg.Viz.OutputDir)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		visualizer = viz.Multi{viz.NewLogVisualizer(), writer}
	}

	return &pipelineEnv{
		Store:     st,
		Importer:  importer.New(resolver, st, visualizer, cfg.NormalizeOptions()),
		ParseOpts: parseOpts,
	}, nil
}

func (e *pipelineEnv) Close() {
	if err := e.Store.Close(); err != nil {
		zap.L().Warn("store close failed", zap.Error(err))
	}
}

// newStore builds the persistence backend selected by store.driver.
func newStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "api":
		return store.NewAPI(store.APIOptions{
			BaseURL: cfg.Store.APIBaseURL,
			Token:   cfg.Store.APIToken,
		})
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
