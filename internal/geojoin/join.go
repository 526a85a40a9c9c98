// Package geojoin maps aggregated per-province severity onto geographic
// boundary features for choropleth rendering.
package geojoin

import (
	"sort"

	"github.com/couchcryptid/cat-loss-atlas/internal/adapter/boundary"
	"github.com/couchcryptid/cat-loss-atlas/internal/domain"
)

// provinceNames maps canonical codes to the display names carried by the
// boundary file's feature properties.
var provinceNames = map[string]string{
	"CA-AB": "Alberta",
	"CA-BC": "British Columbia",
	"CA-MB": "Manitoba",
	"CA-NB": "New Brunswick",
	"CA-NL": "Newfoundland and Labrador",
	"CA-NS": "Nova Scotia",
	"CA-NT": "Northwest Territories",
	"CA-NU": "Nunavut",
	"CA-ON": "Ontario",
	"CA-PE": "Prince Edward Island",
	"CA-QC": "Quebec",
	"CA-SK": "Saskatchewan",
	"CA-YT": "Yukon",
}

// ProvinceName returns the boundary display name for a canonical code.
func ProvinceName(code string) (string, bool) {
	name, ok := provinceNames[code]
	return name, ok
}

// Row is one choropleth data row. AvgLossPerEvent is nil for a province
// emitted for map completeness with zero events; nil means "undefined",
// distinct from a true zero average.
type Row struct {
	ProvinceCode    string   `json:"province_code"`
	ProvinceName    string   `json:"province_name"`
	EventCount      int      `json:"event_count"`
	TotalLossSum    float64  `json:"total_loss_sum"`
	AvgLossPerEvent *float64 `json:"avg_loss_per_event"`
}

// Result is the geo-joined output handed to the rendering layer.
type Result struct {
	Rows    []Row               `json:"rows"`
	Summary domain.SummaryStats `json:"summary"`

	// UnmatchedCodes lists province codes that could not be joined to a
	// boundary feature. They are reported, never silently dropped.
	UnmatchedCodes []string `json:"unmatched_codes,omitempty"`
}

// Options controls the join.
type Options struct {
	// IncludeEmpty emits a row for every canonical province, even with
	// zero events, for map completeness.
	IncludeEmpty bool
}

// Join maps an aggregation result onto boundary features. Rows are sorted
// by province code. A code with no display name or no matching boundary
// feature is recorded in UnmatchedCodes.
func Join(agg domain.AggregationResult, fc *boundary.FeatureCollection, opts Options) Result {
	featureNames := make(map[string]struct{}, len(fc.Features))
	for _, f := range fc.Features {
		featureNames[f.Properties.Name] = struct{}{}
	}

	codes := joinCodes(agg, opts)

	result := Result{Summary: agg.Summary}
	for _, code := range codes {
		row := Row{ProvinceCode: code}
		if sev, ok := agg.Provinces[code]; ok {
			row.EventCount = sev.EventCount
			row.TotalLossSum = sev.TotalLossSum
			avg := sev.AvgLossPerEvent
			row.AvgLossPerEvent = &avg
		}

		name, ok := provinceNames[code]
		if !ok {
			result.UnmatchedCodes = append(result.UnmatchedCodes, code)
		} else {
			row.ProvinceName = name
			if _, found := featureNames[name]; !found {
				result.UnmatchedCodes = append(result.UnmatchedCodes, code)
			}
		}
		result.Rows = append(result.Rows, row)
	}

	sort.Strings(result.UnmatchedCodes)
	return result
}

func joinCodes(agg domain.AggregationResult, opts Options) []string {
	if opts.IncludeEmpty {
		codes := make([]string, len(domain.CanonicalCodes))
		copy(codes, domain.CanonicalCodes)
		return codes
	}
	codes := make([]string, 0, len(agg.Provinces))
	for code := range agg.Provinces {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
