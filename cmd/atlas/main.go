package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/cat-loss-atlas/internal/adapter/boundary"
	"github.com/couchcryptid/cat-loss-atlas/internal/adapter/httpapi"
	"github.com/couchcryptid/cat-loss-atlas/internal/config"
	"github.com/couchcryptid/cat-loss-atlas/internal/domain"
	"github.com/couchcryptid/cat-loss-atlas/internal/loader"
	"github.com/couchcryptid/cat-loss-atlas/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	catalog, err := buildCatalog(cfg, logger)
	if err != nil {
		logger.Error("failed to build region catalog", "error", err)
		os.Exit(1)
	}

	store := loader.NewStore(cfg.DataDir, loader.New(catalog, logger, metrics), logger, metrics)
	if err := store.LoadAll(); err != nil {
		logger.Error("failed to load datasets", "error", err)
		os.Exit(1)
	}
	for id, msg := range store.Failures() {
		logger.Warn("dataset unavailable for this invocation", "dataset", id, "error", msg)
	}

	// Boundary fetch is feature-flagged; without it the choropleth endpoint
	// reports unavailable while severity aggregation keeps working.
	var boundaries boundary.Source
	if cfg.BoundaryEnabled {
		client := boundary.NewClient(cfg.BoundaryURL, cfg.BoundaryTimeout, logger, metrics)
		boundaries = boundary.NewCachedSource(client, metrics)
		logger.Info("boundary fetch enabled", "url", cfg.BoundaryURL, "timeout", cfg.BoundaryTimeout)
	} else {
		logger.Info("boundary fetch disabled")
	}

	srv := httpapi.NewServer(cfg, store, boundaries, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

func buildCatalog(cfg *config.Config, logger *slog.Logger) (*domain.Catalog, error) {
	if cfg.CatalogPath == "" {
		return domain.DefaultCatalog(), nil
	}
	logger.Info("loading region catalog", "path", cfg.CatalogPath)
	return domain.LoadCatalogFile(cfg.CatalogPath)
}
