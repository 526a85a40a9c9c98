package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/couchcryptid/cat-loss-atlas/internal/domain"
	"github.com/couchcryptid/cat-loss-atlas/internal/observability"
)

// DatasetInfo summarizes one loaded dataset for listings.
type DatasetInfo struct {
	ID      string            `json:"id"`
	Hazard  string            `json:"hazard"`
	Records int               `json:"records"`
	Years   []int             `json:"years"`
	Report  domain.LoadReport `json:"report"`
}

// Store loads every recognized source file in a data directory and holds
// the resulting immutable datasets for the life of the process. A failed
// load is terminal for that dataset in the current invocation; the rest
// proceed. Reload rebuilds everything from disk and, for unchanged files,
// produces identical contents.
type Store struct {
	dir     string
	loader  *Loader
	logger  *slog.Logger
	metrics *observability.Metrics

	mu       sync.RWMutex
	order    []string
	datasets map[string]domain.Dataset
	reports  map[string]domain.LoadReport
	failures map[string]string
}

// NewStore creates a Store over the given data directory.
func NewStore(dir string, l *Loader, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		dir:      dir,
		loader:   l,
		logger:   logger,
		metrics:  metrics,
		datasets: make(map[string]domain.Dataset),
		reports:  make(map[string]domain.LoadReport),
		failures: make(map[string]string),
	}
}

// LoadAll scans the data directory and loads every source file. It returns
// an error only when the directory itself cannot be read; individual load
// failures are recorded and surfaced via Failures.
func (s *Store) LoadAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read data dir %s: %w", s.dir, err)
	}

	order := make([]string, 0, len(entries))
	datasets := make(map[string]domain.Dataset)
	reports := make(map[string]domain.LoadReport)
	failures := make(map[string]string)

	for _, entry := range entries {
		if entry.IsDir() || !IsSourceFile(entry.Name()) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		ds, report, err := s.loader.Load(path)
		if err != nil {
			s.logger.Error("dataset load failed", "file", entry.Name(), "error", err)
			s.metrics.LoadFailures.Inc()
			failures[DatasetID(path)] = err.Error()
			continue
		}
		order = append(order, ds.ID)
		datasets[ds.ID] = ds
		reports[ds.ID] = report
	}

	s.mu.Lock()
	s.order = order
	s.datasets = datasets
	s.reports = reports
	s.failures = failures
	s.mu.Unlock()

	s.metrics.DatasetsLoaded.Set(float64(len(datasets)))
	s.logger.Info("store loaded", "datasets", len(datasets), "failures", len(failures))
	return nil
}

// Ready reports whether at least one dataset loaded successfully.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.datasets) > 0
}

// Get returns one dataset by identifier.
func (s *Store) Get(id string) (domain.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[id]
	return ds, ok
}

// Datasets returns the selected datasets in load order. An empty id list
// selects all loaded datasets. Unknown identifiers select nothing.
func (s *Store) Datasets(ids []string) []domain.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(ids) == 0 {
		all := make([]domain.Dataset, 0, len(s.order))
		for _, id := range s.order {
			all = append(all, s.datasets[id])
		}
		return all
	}

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var selected []domain.Dataset
	for _, id := range s.order {
		if _, ok := want[id]; ok {
			selected = append(selected, s.datasets[id])
		}
	}
	return selected
}

// List summarizes all loaded datasets in load order.
func (s *Store) List() []DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]DatasetInfo, 0, len(s.order))
	for _, id := range s.order {
		ds := s.datasets[id]
		infos = append(infos, DatasetInfo{
			ID:      ds.ID,
			Hazard:  ds.Hazard,
			Records: len(ds.Records),
			Years:   ds.Years(),
			Report:  s.reports[id],
		})
	}
	return infos
}

// Failures returns load failures by dataset identifier.
func (s *Store) Failures() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.failures))
	for k, v := range s.failures {
		out[k] = v
	}
	return out
}
