package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/facility-atlas/internal/cleanse"
	"github.com/sells-group/facility-atlas/internal/model"
	"github.com/sells-group/facility-atlas/internal/overlap"
	"github.com/sells-group/facility-atlas/internal/render"
	"github.com/sells-group/facility-atlas/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the facility and analysis API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(st, cfg.Analysis.Overlap()),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// newRouter builds the API routes.
func newRouter(st store.Store, analysisCfg overlap.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/facilities", handleListFacilities(st))
		r.Get("/facilities.geojson", handleFacilitiesGeoJSON(st))
		r.Get("/facilities/counts", handleCounts(st))
		r.Get("/runs", handleListRuns(st))
		r.Get("/runs/{id}", handleGetRun(st))
		r.Post("/analyze", handleAnalyze(st, analysisCfg))
	})

	return r
}

func handleListFacilities(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := store.FacilityFilter{
			Category: model.Category(q.Get("category")),
			City:     q.Get("city"),
			County:   q.Get("county"),
			Source:   q.Get("source"),
			Limit:    queryInt(q.Get("limit"), 500),
			Offset:   queryInt(q.Get("offset"), 0),
		}
		if filter.Category != "" && !filter.Category.Valid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown category %q", filter.Category))
			return
		}

		facilities, err := st.ListFacilities(r.Context(), filter)
		if err != nil {
			zap.L().Error("list facilities", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list facilities failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":      len(facilities),
			"facilities": facilities,
		})
	}
}

func handleFacilitiesGeoJSON(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		facilities, err := st.ListFacilities(r.Context(), store.FacilityFilter{})
		if err != nil {
			zap.L().Error("geojson: list facilities", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list facilities failed")
			return
		}
		fc := render.FacilityCollection(facilities)
		w.Header().Set("Content-Type", "application/geo+json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(fc)
	}
}

func handleCounts(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := st.CountByCategory(r.Context())
		if err != nil {
			zap.L().Error("count facilities", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "count failed")
			return
		}
		writeJSON(w, http.StatusOK, counts)
	}
}

func handleListRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := st.ListRuns(r.Context(), queryInt(r.URL.Query().Get("limit"), 20))
		if err != nil {
			zap.L().Error("list runs", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list runs failed")
			return
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func handleGetRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := st.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

func handleAnalyze(st store.Store, baseCfg overlap.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ocfg := baseCfg
		if radius := r.URL.Query().Get("radius"); radius != "" {
			v, err := strconv.ParseFloat(radius, 64)
			if err != nil || v <= 0 {
				writeError(w, http.StatusBadRequest, "radius must be a positive number")
				return
			}
			ocfg.ServiceRadiusMiles = v
		}

		facilities, err := st.ListFacilities(r.Context(), store.FacilityFilter{})
		if err != nil {
			zap.L().Error("analyze: list facilities", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list facilities failed")
			return
		}
		located, _ := cleanse.DropUnlocated(facilities)

		run, err := st.CreateRun(r.Context(), ocfg)
		if err != nil {
			zap.L().Error("analyze: create run", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "create run failed")
			return
		}

		result, err := overlap.Analyze(located, ocfg)
		if err != nil {
			_ = st.FailRun(r.Context(), run.ID, err.Error())
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := st.CompleteRun(r.Context(), run.ID, result); err != nil {
			zap.L().Error("analyze: complete run", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "persist run failed")
			return
		}

		run.Status = store.RunStatusComplete
		run.Result = result
		writeJSON(w, http.StatusOK, run)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
