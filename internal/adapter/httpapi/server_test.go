package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cat-loss-atlas/internal/adapter/boundary"
	"github.com/couchcryptid/cat-loss-atlas/internal/config"
	"github.com/couchcryptid/cat-loss-atlas/internal/domain"
	"github.com/couchcryptid/cat-loss-atlas/internal/geojoin"
	"github.com/couchcryptid/cat-loss-atlas/internal/loader"
	"github.com/couchcryptid/cat-loss-atlas/internal/observability"
)

// --- mocks ---

type fakeStore struct {
	infos    []loader.DatasetInfo
	datasets []domain.Dataset
	failures map[string]string
	ready    bool
}

func (f *fakeStore) List() []loader.DatasetInfo  { return f.infos }
func (f *fakeStore) Failures() map[string]string { return f.failures }
func (f *fakeStore) Ready() bool                 { return f.ready }

func (f *fakeStore) Datasets(ids []string) []domain.Dataset {
	if len(ids) == 0 {
		return f.datasets
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var selected []domain.Dataset
	for _, ds := range f.datasets {
		if _, ok := want[ds.ID]; ok {
			selected = append(selected, ds)
		}
	}
	return selected
}

type fakeBoundaries struct {
	fc  *boundary.FeatureCollection
	err error
}

func (f *fakeBoundaries) FetchBoundaries(_ context.Context) (*boundary.FeatureCollection, error) {
	return f.fc, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		HTTPAddr:    ":0",
		CORSOrigins: []string{"http://localhost:5173"},
	}
}

func testStore() *fakeStore {
	return &fakeStore{
		ready: true,
		infos: []loader.DatasetInfo{
			{ID: "flood_cases", Hazard: "flood", Records: 2, Years: []int{2019, 2020}},
		},
		datasets: []domain.Dataset{
			{ID: "flood_cases", Hazard: "flood", Records: []domain.NormalizedRecord{
				{ProvinceCodes: []string{"CA-ON"}, EventYear: 2020, TotalLoss: 1.0},
				{ProvinceCodes: []string{"CA-NB", "CA-NS", "CA-PE"}, EventYear: 2020, TotalLoss: 2.0},
				{ProvinceCodes: []string{"CA-ON"}, EventYear: 2019, TotalLoss: 3.0},
			}},
		},
	}
}

func canadaFeatures() *boundary.FeatureCollection {
	fc := &boundary.FeatureCollection{Type: "FeatureCollection"}
	for _, code := range domain.CanonicalCodes {
		name, _ := geojoin.ProvinceName(code)
		fc.Features = append(fc.Features, boundary.Feature{
			Type:       "Feature",
			Properties: boundary.Properties{Name: name},
		})
	}
	return fc
}

func newTestServer(store DatasetStore, boundaries boundary.Source) *Server {
	return NewServer(testConfig(), store, boundaries, discardLogger(), observability.NewMetricsForTesting())
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.ServeHTTP(rec, req)
	return rec
}

// --- tests ---

func TestServer_Health(t *testing.T) {
	s := newTestServer(testStore(), nil)
	rec := doRequest(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Readiness(t *testing.T) {
	t.Run("ready with datasets", func(t *testing.T) {
		rec := doRequest(t, newTestServer(testStore(), nil), "/readyz")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready without datasets", func(t *testing.T) {
		rec := doRequest(t, newTestServer(&fakeStore{}, nil), "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestServer_Datasets(t *testing.T) {
	store := testStore()
	store.failures = map[string]string{"broken_cases": "schema error"}
	rec := doRequest(t, newTestServer(store, nil), "/api/datasets")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Datasets []loader.DatasetInfo `json:"datasets"`
		Failures map[string]string    `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Datasets, 1)
	assert.Equal(t, "flood_cases", resp.Datasets[0].ID)
	assert.Equal(t, "schema error", resp.Failures["broken_cases"])
}

func TestServer_Severity(t *testing.T) {
	s := newTestServer(testStore(), nil)

	t.Run("all data", func(t *testing.T) {
		rec := doRequest(t, s, "/api/severity")
		require.Equal(t, http.StatusOK, rec.Code)

		var result domain.AggregationResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 3, result.Summary.TotalEvents)
		assert.Equal(t, 2, result.Provinces["CA-ON"].EventCount)
	})

	t.Run("year filter", func(t *testing.T) {
		rec := doRequest(t, s, "/api/severity?years=2020")
		require.Equal(t, http.StatusOK, rec.Code)

		var result domain.AggregationResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 2, result.Summary.TotalEvents)
		assert.Equal(t, 1, result.Summary.YearCount)
		assert.Equal(t, 1, result.Provinces["CA-ON"].EventCount)
	})

	t.Run("disjoint years yield empty result", func(t *testing.T) {
		rec := doRequest(t, s, "/api/severity?years=1999")
		require.Equal(t, http.StatusOK, rec.Code)

		var result domain.AggregationResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Empty(t, result.Provinces)
		assert.Equal(t, 0, result.Summary.TotalEvents)
		assert.Nil(t, result.Summary.OverallAvgSeverity)
	})

	t.Run("invalid year", func(t *testing.T) {
		rec := doRequest(t, s, "/api/severity?years=abc")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown dataset", func(t *testing.T) {
		rec := doRequest(t, s, "/api/severity?datasets=earthquake_cases")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_Choropleth(t *testing.T) {
	t.Run("joined rows", func(t *testing.T) {
		s := newTestServer(testStore(), &fakeBoundaries{fc: canadaFeatures()})
		rec := doRequest(t, s, "/api/choropleth?years=2020")
		require.Equal(t, http.StatusOK, rec.Code)

		var result geojoin.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		require.Len(t, result.Rows, 4)
		assert.Empty(t, result.UnmatchedCodes)
		assert.Equal(t, 2, result.Summary.TotalEvents)
	})

	t.Run("include empty provinces", func(t *testing.T) {
		s := newTestServer(testStore(), &fakeBoundaries{fc: canadaFeatures()})
		rec := doRequest(t, s, "/api/choropleth?include_empty=true")
		require.Equal(t, http.StatusOK, rec.Code)

		var result geojoin.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Len(t, result.Rows, len(domain.CanonicalCodes))
	})

	t.Run("boundary disabled", func(t *testing.T) {
		s := newTestServer(testStore(), nil)
		rec := doRequest(t, s, "/api/choropleth")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("boundary failure", func(t *testing.T) {
		s := newTestServer(testStore(), &fakeBoundaries{err: errors.New("fetch failed")})
		rec := doRequest(t, s, "/api/choropleth")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
