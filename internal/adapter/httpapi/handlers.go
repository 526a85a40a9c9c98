package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/cat-loss-atlas/internal/domain"
	"github.com/couchcryptid/cat-loss-atlas/internal/geojoin"
	"github.com/couchcryptid/cat-loss-atlas/internal/loader"
)

// datasetsResponse lists loaded datasets plus any loads that failed this
// invocation.
type datasetsResponse struct {
	Datasets []loader.DatasetInfo `json:"datasets"`
	Failures map[string]string    `json:"failures,omitempty"`
}

func (s *Server) handleDatasets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, datasetsResponse{
		Datasets: s.store.List(),
		Failures: s.store.Failures(),
	})
}

func (s *Server) handleSeverity(w http.ResponseWriter, r *http.Request) {
	result, ok := s.aggregateFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleChoropleth(w http.ResponseWriter, r *http.Request) {
	if s.boundaries == nil {
		writeError(w, http.StatusServiceUnavailable, "boundary fetch is disabled")
		return
	}

	result, ok := s.aggregateFromQuery(w, r)
	if !ok {
		return
	}

	fc, err := s.boundaries.FetchBoundaries(r.Context())
	if err != nil {
		s.logger.Error("boundary fetch failed", "error", err)
		writeError(w, http.StatusBadGateway, "boundary fetch failed")
		return
	}

	opts := geojoin.Options{IncludeEmpty: r.URL.Query().Get("include_empty") == "true"}
	writeJSON(w, http.StatusOK, geojoin.Join(result, fc, opts))
}

// aggregateFromQuery parses the dataset/year selection, runs the
// aggregation, and records metrics. On a bad request it writes the error
// response and returns ok=false.
func (s *Server) aggregateFromQuery(w http.ResponseWriter, r *http.Request) (domain.AggregationResult, bool) {
	req, err := parseRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return domain.AggregationResult{}, false
	}

	datasets := s.store.Datasets(req.DatasetIDs)
	if len(req.DatasetIDs) > 0 && len(datasets) == 0 {
		writeError(w, http.StatusNotFound, "no matching datasets")
		return domain.AggregationResult{}, false
	}

	start := time.Now()
	result := domain.Aggregate(datasets, req)
	s.metrics.AggregationRequests.Inc()
	s.metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	return result, true
}

// parseRequest reads the "datasets" and "years" query parameters, both
// comma-separated. Empty parameters select everything; that default is part
// of the API contract, not an accident.
func parseRequest(r *http.Request) (domain.AggregationRequest, error) {
	req := domain.AggregationRequest{
		DatasetIDs: splitParam(r.URL.Query().Get("datasets")),
	}

	for _, part := range splitParam(r.URL.Query().Get("years")) {
		year, err := strconv.Atoi(part)
		if err != nil {
			return req, fmt.Errorf("invalid year %q", part)
		}
		req.Years = append(req.Years, year)
	}
	return req, nil
}

func splitParam(v string) []string {
	var parts []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
