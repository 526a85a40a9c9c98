package boundary

import (
	"context"
	"sync"

	"github.com/couchcryptid/cat-loss-atlas/internal/observability"
)

// CachedSource memoizes a Source. Boundary data is static for the life of
// the process, so the first successful fetch is reused for every later
// request; failures are not cached and will be retried.
type CachedSource struct {
	inner   Source
	metrics *observability.Metrics

	mu sync.Mutex
	fc *FeatureCollection
}

// NewCachedSource creates a memo decorator around a boundary source.
func NewCachedSource(inner Source, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{inner: inner, metrics: metrics}
}

func (c *CachedSource) FetchBoundaries(ctx context.Context) (*FeatureCollection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fc != nil {
		c.metrics.BoundaryCache.WithLabelValues("hit").Inc()
		return c.fc, nil
	}
	c.metrics.BoundaryCache.WithLabelValues("miss").Inc()

	fc, err := c.inner.FetchBoundaries(ctx)
	if err != nil {
		return nil, err
	}
	c.fc = fc
	return fc, nil
}
