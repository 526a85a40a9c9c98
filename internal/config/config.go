package config

import (
	"errors"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataDir         string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// CatalogPath optionally points at a JSON region-catalog file; empty
	// means the built-in catalog.
	CatalogPath string

	// Boundary GeoJSON fetch configuration.
	BoundaryURL     string
	BoundaryEnabled bool
	BoundaryTimeout time.Duration

	CORSOrigins []string
}

// defaultBoundaryURL is the public Canada provinces GeoJSON used for
// choropleth joins.
const defaultBoundaryURL = "https://raw.githubusercontent.com/codeforgermany/click_that_hood/master/public/data/canada.geojson"

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDurationEnv("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	boundaryTimeout, err := parseDurationEnv("BOUNDARY_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:         envOrDefault("DATA_DIR", "data"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CatalogPath:     envOrDefault("CATALOG_PATH", ""),
		BoundaryURL:     envOrDefault("BOUNDARY_URL", defaultBoundaryURL),
		BoundaryEnabled: parseBoolEnv("BOUNDARY_ENABLED", true),
		BoundaryTimeout: boundaryTimeout,
		CORSOrigins:     parseListEnv("CORS_ORIGINS", "http://localhost:5173"),
	}

	if cfg.DataDir == "" {
		return nil, errors.New("DATA_DIR is required")
	}
	if cfg.BoundaryEnabled && cfg.BoundaryURL == "" {
		return nil, errors.New("BOUNDARY_ENABLED is true but BOUNDARY_URL is empty")
	}

	return cfg, nil
}
