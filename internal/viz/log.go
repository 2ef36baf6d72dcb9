package viz

import (
	"context"

	"go.uber.org/zap"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// LogVisualizer reports each stored market area through the structured
// logger. Useful as the default sink when no output directory is set.
type LogVisualizer struct {
	log *zap.Logger
}

func NewLogVisualizer() *LogVisualizer {
	return &LogVisualizer{log: zap.L().Named("viz")}
}

func (v *LogVisualizer) Visualize(_ context.Context, ma *marketarea.MarketArea) error {
	resolved := 0
	for _, loc := range ma.Locations {
		if loc.Geometry != nil {
			resolved++
		}
	}
	v.log.Info("market area stored",
		zap.String("id", ma.ID),
		zap.String("name", ma.Name),
		zap.String("kind", string(ma.Kind)),
		zap.Int("order", ma.Order),
		zap.Int("locations", len(ma.Locations)),
		zap.Int("resolved", resolved),
		zap.Int("points", len(ma.RadiusPoints)+len(ma.DriveTimePoints)),
	)
	return nil
}
