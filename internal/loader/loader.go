// Package loader reads named tabular case-data sources into immutable
// datasets, applying schema validation and region resolution per row.
package loader

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/cat-loss-atlas/internal/domain"
	"github.com/couchcryptid/cat-loss-atlas/internal/observability"
)

// Loader turns a raw tabular source into a Dataset plus its LoadReport.
// Loads are idempotent: re-loading the same source yields an identical
// Dataset.
type Loader struct {
	catalog *domain.Catalog
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Loader resolving province labels against the given catalog.
func New(catalog *domain.Catalog, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{
		catalog: catalog,
		logger:  logger,
		metrics: metrics,
	}
}

// Load reads one source file. It fails with a wrapped ErrSourceUnavailable
// when the file cannot be read, or a SchemaError when required columns are
// missing; both are fatal for this dataset only. Structurally invalid rows
// are excluded and counted in the report, never silently dropped.
func (l *Loader) Load(path string) (domain.Dataset, domain.LoadReport, error) {
	id := DatasetID(path)
	report := domain.LoadReport{DatasetID: id}

	tbl, err := readTable(path)
	if err != nil {
		return domain.Dataset{}, report, err
	}

	idx, err := findColumns(tbl.source, tbl.header)
	if err != nil {
		return domain.Dataset{}, report, err
	}

	records := make([]domain.NormalizedRecord, 0, len(tbl.rows))
	for i, row := range tbl.rows {
		// Header occupies line 1; data starts at line 2.
		raw := idx.rawRecord(i+2, row)

		rec, rowErr, unknown := l.normalize(raw)
		report.UnknownTokens = append(report.UnknownTokens, unknown...)
		if rowErr != nil {
			report.RowsRejected++
			report.RejectedRows = append(report.RejectedRows, *rowErr)
			l.logger.Warn("row rejected",
				"dataset", id,
				"line", rowErr.Line,
				"field", rowErr.Field,
				"reason", rowErr.Reason,
			)
			continue
		}
		report.RowsAccepted++
		records = append(records, rec)
	}
	report.GeneratedAt = domain.Now()

	l.metrics.RowsAccepted.Add(float64(report.RowsAccepted))
	l.metrics.RowsRejected.Add(float64(report.RowsRejected))
	l.metrics.UnknownRegionTokens.Add(float64(len(report.UnknownTokens)))

	ds := domain.Dataset{
		ID:       id,
		Hazard:   hazardTag(id),
		Records:  records,
		LoadedAt: domain.Now(),
	}
	l.logger.Info("dataset loaded",
		"dataset", id,
		"hazard", ds.Hazard,
		"accepted", report.RowsAccepted,
		"rejected", report.RowsRejected,
		"unknown_tokens", len(report.UnknownTokens),
	)
	return ds, report, nil
}

// normalize validates one raw row and resolves its province label. An
// unknown token drops only that token; a row whose resolved code set is
// empty escalates to a RowFormatError.
func (l *Loader) normalize(raw domain.RawRecord) (domain.NormalizedRecord, *domain.RowFormatError, []domain.UnknownRegionError) {
	year, rowErr := parseYear(raw)
	if rowErr != nil {
		return domain.NormalizedRecord{}, rowErr, nil
	}
	loss, rowErr := parseLoss(raw)
	if rowErr != nil {
		return domain.NormalizedRecord{}, rowErr, nil
	}

	codes, unknown := l.catalog.Resolve(raw.Provinces)
	for i := range unknown {
		unknown[i].Line = raw.Line
	}
	if len(codes) == 0 {
		return domain.NormalizedRecord{}, &domain.RowFormatError{
			Line: raw.Line, Field: colProvinces, Value: raw.Provinces,
			Reason: "no resolvable province codes",
		}, unknown
	}

	return domain.NormalizedRecord{
		ProvinceCodes: codes,
		EventYear:     year,
		TotalLoss:     loss,
	}, nil, unknown
}

// DatasetID derives the dataset identifier from a source file name: the
// base name without extension, lowercased.
func DatasetID(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// hazardTag derives the hazard-type tag from a dataset ID. Case files are
// named "<hazard>_cases" or just "<hazard>"; the tag is the leading token.
func hazardTag(id string) string {
	if i := strings.IndexAny(id, "_-"); i > 0 {
		return id[:i]
	}
	return id
}
