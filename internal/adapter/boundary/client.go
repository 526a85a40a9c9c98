// Package boundary fetches the geographic boundary GeoJSON used for
// choropleth joins. It sits outside the core aggregation contract: a
// boundary failure never invalidates an aggregation result.
package boundary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/cat-loss-atlas/internal/observability"
)

// FeatureCollection is the subset of GeoJSON the join needs. Geometry is
// kept opaque and passed through untouched.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one boundary polygon with its display name.
type Feature struct {
	Type       string          `json:"type"`
	Properties Properties      `json:"properties"`
	Geometry   json.RawMessage `json:"geometry,omitempty"`
}

// Properties carries the feature's display name, the join key against
// province codes.
type Properties struct {
	Name string `json:"name"`
}

// Source provides boundary data for the geo-join.
type Source interface {
	FetchBoundaries(ctx context.Context) (*FeatureCollection, error)
}

// Client fetches a boundary FeatureCollection over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a boundary HTTP client with a hard request timeout.
func NewClient(url string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FetchBoundaries downloads and decodes the boundary file.
func (c *Client) FetchBoundaries(ctx context.Context) (*FeatureCollection, error) {
	fc, err := c.fetch(ctx)
	if err != nil {
		c.metrics.BoundaryFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.BoundaryFetches.WithLabelValues("success").Inc()
	return fc, nil
}

func (c *Client) fetch(ctx context.Context) (*FeatureCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("boundary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("boundary fetch: status %d: %s", resp.StatusCode, body)
	}

	var fc FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode boundary response: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("boundary fetch: no features in %s", c.url)
	}

	c.logger.Debug("boundary fetched", "url", c.url, "features", len(fc.Features))
	return &fc, nil
}
