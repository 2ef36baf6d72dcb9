package main

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/fetcher"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/parse"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/sheet"
)

var (
	importFile    string
	importProject string
	importSheet   string
	importDryRun  bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import market areas from a spreadsheet",
	Long:  "Loads an XLSX or CSV file (local path or URL), parses every market area it defines, resolves geography boundaries, and persists the results.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		opts, err := cfg.ParseOptions()
		if err != nil {
			return err
		}
		if importProject != "" {
			opts.ProjectID = importProject
		}

		local, cleanup, err := localCopy(ctx, importFile)
		if err != nil {
			return err
		}
		defer cleanup()

		drafts, err := loadDrafts(local, opts)
		if err != nil {
			return err
		}
		if len(drafts) == 0 {
			return eris.Errorf("no market areas found in %s", importFile)
		}

		if importDryRun {
			for _, d := range drafts {
				cmd.Printf("%s\t%s\n", d.Kind, d.Name)
			}
			cmd.Printf("%d market areas parsed (dry run, nothing imported)\n", len(drafts))
			return nil
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result := env.Importer.Run(ctx, drafts)
		printResult(cmd.OutOrStdout(), &result)

		if result.ImportedCount == 0 {
			return eris.Errorf("import failed: %s", result.FirstError())
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "spreadsheet path or URL (required)")
	importCmd.Flags().StringVar(&importProject, "project", "", "target project id (default from config)")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "worksheet name (default first sheet)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse only, do not import")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

// localCopy downloads a remote spreadsheet to a temp file so the XLSX
// reader can open it by path. Returns the original ref unchanged for
// local paths.
func localCopy(ctx context.Context, ref string) (string, func(), error) {
	if !strings.Contains(ref, "://") {
		return ref, func() {}, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", nil, eris.Wrapf(err, "parse url %s", ref)
	}

	dir, err := os.MkdirTemp("", "marketarea-import-*")
	if err != nil {
		return "", nil, eris.Wrap(err, "create temp dir")
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "import.csv"
	}
	dest := filepath.Join(dir, name)

	rc, err := fetcher.Open(ctx, ref)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	defer rc.Close()

	f, err := os.Create(dest)
	if err != nil {
		cleanup()
		return "", nil, eris.Wrap(err, "create temp file")
	}
	defer f.Close()

	if _, err := io.Copy(f, rc); err != nil {
		cleanup()
		return "", nil, eris.Wrapf(err, "download %s", ref)
	}

	zap.L().Info("downloaded spreadsheet", zap.String("url", ref), zap.String("path", dest))
	return dest, cleanup, nil
}

// loadDrafts reads the spreadsheet, detects its layout, and parses it.
func loadDrafts(path string, opts parse.Options) ([]marketarea.Draft, error) {
	xlsxOpts := sheet.XLSXOptions{SheetName: importSheet}

	rows, err := sheet.Load(path, xlsxOpts)
	if err != nil {
		return nil, err
	}

	var colors [][]string
	if sheet.IsSpreadsheetPath(path) {
		colors, err = sheet.CellColors(path, xlsxOpts)
		if err != nil {
			// Color extraction is best effort; text-based styles still apply.
			zap.L().Warn("cell color extraction failed", zap.Error(err))
			colors = nil
		}
	}

	layout := sheet.DetectLayout(rows)
	zap.L().Info("spreadsheet loaded",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
		zap.String("layout", string(layout)),
	)

	if layout == sheet.LayoutTemplate {
		return parse.ParseTemplate(rows, opts)
	}
	return parse.ParseStandard(rows, colors, opts)
}

func printResult(w io.Writer, result *marketarea.ImportResult) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}
