package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tracelight/osint-cli/internal/model"
	"github.com/tracelight/osint-cli/internal/monitoring"
	"github.com/tracelight/osint-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP lookup API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initEngine(ctx, true)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(env),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
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

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(env *lookupEnv) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/lookup", handleLookup(env))

	r.Get("/investigations", handleListInvestigations(env))
	r.Get("/investigations/{id}", handleGetInvestigation(env))
	r.Get("/stats", handleStats(env))

	return r
}

func handleLookup(env *lookupEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Number  string   `json:"number"`
			Region  string   `json:"region"`
			Sources []string `json:"sources"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Number == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "number is required"})
			return
		}

		sources, err := parseSources(req.Sources)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		agg, err := env.Aggregator.Aggregate(r.Context(), req.Number, req.Region, sources)
		if err != nil {
			writeLookupError(w, err)
			return
		}

		env.persist(r.Context(), agg)
		writeJSON(w, http.StatusOK, agg)
	}
}

// writeLookupError maps input validation failures to 400 with the error's
// structured payload; anything else is a 500.
func writeLookupError(w http.ResponseWriter, err error) {
	var ife *model.InvalidFormatError
	if errors.As(err, &ife) {
		writeJSON(w, http.StatusBadRequest, ife.ToMap())
		return
	}
	var ure *model.UnsupportedRegionError
	if errors.As(err, &ure) {
		writeJSON(w, http.StatusBadRequest, ure.ToMap())
		return
	}
	zap.L().Error("lookup failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func handleListInvestigations(env *lookupEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if env.Store == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "history store disabled"})
			return
		}

		filter := store.Filter{
			Identifier: r.URL.Query().Get("identifier"),
			Region:     r.URL.Query().Get("region"),
			Level:      model.Level(r.URL.Query().Get("level")),
		}
		invs, err := env.Store.ListInvestigations(r.Context(), filter)
		if err != nil {
			zap.L().Error("list investigations failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"investigations": invs, "count": len(invs)})
	}
}

func handleGetInvestigation(env *lookupEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if env.Store == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "history store disabled"})
			return
		}

		inv, err := env.Store.GetInvestigation(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "investigation not found"})
			return
		}
		writeJSON(w, http.StatusOK, inv)
	}
}

func handleStats(env *lookupEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if env.Store == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "history store disabled"})
			return
		}

		lookback := 0
		if v := r.URL.Query().Get("lookback_hours"); v != "" {
			if _, err := fmt.Sscanf(v, "%d", &lookback); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lookback_hours"})
				return
			}
		}

		snap, err := monitoring.NewCollector(env.Store).Collect(r.Context(), lookback)
		if err != nil {
			zap.L().Error("stats collection failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
