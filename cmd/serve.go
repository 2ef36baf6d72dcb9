package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/parse"
	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/sheet"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the import HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// importRequest is the POST /api/import payload: raw spreadsheet rows
// plus an optional project override.
type importRequest struct {
	Rows      [][]string `json:"rows"`
	ProjectID string     `json:"project_id"`
}

func newRouter(env *pipelineEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/import", func(w http.ResponseWriter, req *http.Request) {
		var body importRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if len(body.Rows) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rows are required"})
			return
		}

		opts := env.ParseOpts
		if body.ProjectID != "" {
			opts.ProjectID = body.ProjectID
		}

		drafts, err := parseRows(body.Rows, opts)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		if len(drafts) == 0 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "no market areas found"})
			return
		}

		result := env.Importer.Run(req.Context(), drafts)

		status := http.StatusOK
		if result.ImportedCount == 0 {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, result)
	})

	return r
}

// parseRows detects the layout of posted rows and parses them. Posted
// rows carry no workbook styling, so the standard parser runs without
// cell colors.
func parseRows(rows [][]string, opts parse.Options) ([]marketarea.Draft, error) {
	if sheet.DetectLayout(rows) == sheet.LayoutTemplate {
		return parse.ParseTemplate(rows, opts)
	}
	return parse.ParseStandard(rows, nil, opts)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
