// Package importer drives the import pipeline: each draft moves through
// validation, normalization, geometry resolution, matching, persistence,
// and visualization. Drafts are processed strictly sequentially so the
// reported batch order stays deterministic and load on the feature
// service stays bounded; failures are recorded per draft and never abort
// the rest of the batch.
package importer

import (
	"context"

	"go.uber.org/zap"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/normalize"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/resolve"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/store"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/viz"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/pkg/arcgis"
)

// Stage names one pipeline state, recorded on per-draft errors.
type Stage string

const (
	StageValidating  Stage = "validating"
	StageNormalizing Stage = "normalizing"
	StageResolving   Stage = "resolving_geometry"
	StageMatching    Stage = "matching"
	StagePersisting  Stage = "persisting"
	StageVisualizing Stage = "visualizing"
)

// GeometryResolver supplies candidate features for a draft. Resolution
// failures surface as an empty slice, never as an error.
type GeometryResolver interface {
	Resolve(ctx context.Context, d *marketarea.Draft) []arcgis.Feature
}

// Importer runs import batches.
type Importer struct {
	resolver GeometryResolver
	store    store.Store
	viz      viz.Visualizer
	normOpts normalize.Options
	log      *zap.Logger
}

// New wires an importer. The visualizer may be nil.
func New(resolver GeometryResolver, st store.Store, v viz.Visualizer, normOpts normalize.Options) *Importer {
	return &Importer{
		resolver: resolver,
		store:    st,
		viz:      v,
		normOpts: normOpts,
		log:      zap.L().Named("importer"),
	}
}

// Run processes a batch. Cancellation is checked before each draft's
// validation; drafts not yet started are reported as errors so the
// caller can account for every draft it submitted.
func (imp *Importer) Run(ctx context.Context, drafts []marketarea.Draft) marketarea.ImportResult {
	var result marketarea.ImportResult

	for i := range drafts {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(drafts); j++ {
				result.Errors = append(result.Errors, marketarea.ImportError{
					Draft:   drafts[j].Name,
					Stage:   string(StageValidating),
					Message: err.Error(),
				})
			}
			break
		}

		id, stage, err := imp.runOne(ctx, &drafts[i])
		if err != nil {
			imp.log.Warn("draft failed",
				zap.String("draft", drafts[i].Name),
				zap.String("stage", string(stage)),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, marketarea.ImportError{
				Draft:   drafts[i].Name,
				Stage:   string(stage),
				Message: imp.errorMessage(stage, err),
			})
			continue
		}
		result.ImportedCount++
		result.CreatedIDs = append(result.CreatedIDs, id)
	}

	imp.log.Info("batch complete",
		zap.Int("imported", result.ImportedCount),
		zap.Int("failed", len(result.Errors)),
	)
	return result
}

// runOne moves a single draft through the pipeline states.
func (imp *Importer) runOne(ctx context.Context, d *marketarea.Draft) (string, Stage, error) {
	if err := d.Validate(); err != nil {
		return "", StageValidating, err
	}

	normalize.Draft(d, imp.normOpts)

	if d.Kind.UsesLocations() {
		features := imp.resolver.Resolve(ctx, d)

		matched := 0
		for i := range d.Locations {
			if f := resolve.Match(d.Locations[i], features, d.Kind); f != nil {
				d.Locations[i].Geometry = f.Geometry
				matched++
			}
		}
		if matched < len(d.Locations) {
			// A location without geometry still persists; the record is
			// just not renderable until re-resolved.
			imp.log.Warn("unmatched locations",
				zap.String("draft", d.Name),
				zap.Int("matched", matched),
				zap.Int("total", len(d.Locations)),
			)
		}
	}

	created, err := imp.store.CreateMarketArea(ctx, d)
	if err != nil {
		return "", StagePersisting, err
	}

	if imp.viz != nil {
		// The draft's locations carry the resolved geometry; stores that
		// round-trip through an API lose it.
		rendered := *created
		rendered.Locations = d.Locations
		if err := imp.viz.Visualize(ctx, &rendered); err != nil {
			imp.log.Warn("visualization failed",
				zap.String("draft", d.Name),
				zap.String("id", created.ID),
				zap.Error(err),
			)
		}
	}

	return created.ID, "", nil
}

// errorMessage renders a stage error for the batch report. Persistence
// rejections get the body extraction chain.
func (imp *Importer) errorMessage(stage Stage, err error) string {
	if stage == StagePersisting {
		return store.RejectionMessage(err)
	}
	return err.Error()
}
