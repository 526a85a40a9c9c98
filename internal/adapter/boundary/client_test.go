package boundary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cat-loss-atlas/internal/observability"
)

const canadaGeoJSON = `{
	"type": "FeatureCollection",
	"features": [
		{"type": "Feature", "properties": {"name": "Ontario"}, "geometry": {"type": "Polygon", "coordinates": []}},
		{"type": "Feature", "properties": {"name": "Quebec"}, "geometry": {"type": "Polygon", "coordinates": []}}
	]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(url string) *Client {
	return NewClient(url, 2*time.Second, discardLogger(), observability.NewMetricsForTesting())
}

func TestClient_FetchBoundaries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(canadaGeoJSON)) //nolint:errcheck
	}))
	defer srv.Close()

	fc, err := newTestClient(srv.URL).FetchBoundaries(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Ontario", fc.Features[0].Properties.Name)
	assert.NotEmpty(t, fc.Features[0].Geometry)
}

func TestClient_FetchBoundaries_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchBoundaries(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestClient_FetchBoundaries_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("{not geojson")) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchBoundaries(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClient_FetchBoundaries_NoFeatures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"type":"FeatureCollection","features":[]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchBoundaries(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no features")
}

// --- cache ---

type countingSource struct {
	fc    *FeatureCollection
	err   error
	calls int
}

func (s *countingSource) FetchBoundaries(_ context.Context) (*FeatureCollection, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.fc, nil
}

func TestCachedSource_MemoizesSuccess(t *testing.T) {
	inner := &countingSource{fc: &FeatureCollection{Type: "FeatureCollection", Features: []Feature{{}}}}
	cached := NewCachedSource(inner, observability.NewMetricsForTesting())

	first, err := cached.FetchBoundaries(context.Background())
	require.NoError(t, err)
	second, err := cached.FetchBoundaries(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedSource_DoesNotCacheFailures(t *testing.T) {
	inner := &countingSource{err: errors.New("boom")}
	cached := NewCachedSource(inner, observability.NewMetricsForTesting())

	_, err := cached.FetchBoundaries(context.Background())
	require.Error(t, err)
	_, err = cached.FetchBoundaries(context.Background())
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)

	// A later success is memoized.
	inner.err = nil
	inner.fc = &FeatureCollection{Features: []Feature{{}}}
	_, err = cached.FetchBoundaries(context.Background())
	require.NoError(t, err)
	_, err = cached.FetchBoundaries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls)
}
