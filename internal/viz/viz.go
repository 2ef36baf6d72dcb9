// Package viz renders persisted market areas for inspection. Rendering
// is best-effort by contract: the importer logs failures and keeps the
// stored record either way.
package viz

import (
	"context"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// Visualizer renders one persisted market area.
type Visualizer interface {
	Visualize(ctx context.Context, ma *marketarea.MarketArea) error
}

// Multi fans a market area out to several visualizers, returning the
// first error after all have run.
type Multi []Visualizer

func (m Multi) Visualize(ctx context.Context, ma *marketarea.MarketArea) error {
	var first error
	for _, v := range m {
		if err := v.Visualize(ctx, ma); err != nil && first == nil {
			first = err
		}
	}
	return first
}
