package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/fetcher"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/geo"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/store"
)

var (
	centroidsShapefile string
	centroidsURL       string
	centroidsOut       string
	centroidsLoadDB    bool
)

// gen-centroids regenerates the state centroid table used to synthesize
// placeholder geometry for unresolvable census blocks.
var genCentroidsCmd = &cobra.Command{
	Use:   "gen-centroids",
	Short: "Regenerate the state centroid table from a TIGER/Line shapefile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		shpPath := centroidsShapefile
		if shpPath == "" {
			dir, err := os.MkdirTemp("", "marketarea-centroids-*")
			if err != nil {
				return err
			}
			defer os.RemoveAll(dir)

			zipPath := filepath.Join(dir, "state.zip")
			f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{})
			n, err := f.DownloadToFile(ctx, centroidsURL, zipPath)
			if err != nil {
				return err
			}
			zap.L().Info("downloaded state shapefile",
				zap.String("url", centroidsURL),
				zap.Int64("bytes", n),
			)

			shpPath, err = fetcher.ExtractShapefile(zipPath, dir)
			if err != nil {
				return err
			}
		}

		centroids, err := geo.GenerateCentroids(shpPath)
		if err != nil {
			return err
		}

		if err := geo.WriteCentroidsJSON(centroidsOut, centroids); err != nil {
			return err
		}
		cmd.Printf("wrote %d state centroids to %s\n", len(centroids), centroidsOut)

		if centroidsLoadDB {
			st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
			if err != nil {
				return err
			}
			defer st.Close()

			loaded, err := geo.LoadCentroids(ctx, st.Pool(), centroids)
			if err != nil {
				return err
			}
			cmd.Printf("loaded %d rows into reference.state_centroids\n", loaded)
		}

		return nil
	},
}

func init() {
	genCentroidsCmd.Flags().StringVar(&centroidsShapefile, "shapefile", "", "local .shp path (skips download)")
	genCentroidsCmd.Flags().StringVar(&centroidsURL, "url", geo.StateShapefileURL, "TIGER/Line state archive URL")
	genCentroidsCmd.Flags().StringVar(&centroidsOut, "out", "state_centroids.json", "output JSON path")
	genCentroidsCmd.Flags().BoolVar(&centroidsLoadDB, "load-db", false, "also upsert into reference.state_centroids (postgres)")
	rootCmd.AddCommand(genCentroidsCmd)
}
