// Package httpapi exposes the aggregation core over HTTP for the
// interactive map frontend, alongside the usual health, readiness, and
// metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/cat-loss-atlas/internal/adapter/boundary"
	"github.com/couchcryptid/cat-loss-atlas/internal/config"
	"github.com/couchcryptid/cat-loss-atlas/internal/domain"
	"github.com/couchcryptid/cat-loss-atlas/internal/loader"
	"github.com/couchcryptid/cat-loss-atlas/internal/observability"
)

// DatasetStore is the slice of the loader store the API needs.
type DatasetStore interface {
	List() []loader.DatasetInfo
	Datasets(ids []string) []domain.Dataset
	Failures() map[string]string
	Ready() bool
}

// Server serves the atlas HTTP API.
type Server struct {
	httpServer *http.Server
	store      DatasetStore
	boundaries boundary.Source // nil when boundary fetch is disabled
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer wires the router. Pass a nil boundary source to disable the
// choropleth endpoint.
func NewServer(cfg *config.Config, store DatasetStore, boundaries boundary.Source, logger *slog.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		store:      store,
		boundaries: boundaries,
		logger:     logger,
		metrics:    metrics,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/datasets", s.handleDatasets)
		r.Get("/severity", s.handleSeverity)
		r.Get("/choropleth", s.handleChoropleth)
	})

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.store.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "no datasets loaded",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
