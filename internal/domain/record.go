package domain

import (
	"sort"
	"time"
)

// RawRecord is one input row as read from a tabular source, before any
// validation. All fields are raw cell text. RawRecords exist only
// transiently during load.
type RawRecord struct {
	Line      int    // 1-based line number in the source, for reporting
	Provinces string // free-text label, possibly comma-separated or a group name
	EventYear string // must be convertible to a positive integer
	TotalLoss string // must be a non-negative finite number (billions of CAD)
}

// NormalizedRecord is the validated, region-resolved form of a row.
type NormalizedRecord struct {
	ProvinceCodes []string `json:"province_codes"` // sorted canonical codes, never empty
	EventYear     int      `json:"event_year"`
	TotalLoss     float64  `json:"total_loss"` // billions of CAD, >= 0
}

// Dataset is a named, ordered sequence of normalized records from a single
// source, tagged with its hazard type. Datasets are immutable once loaded
// and safe to share across aggregation requests.
type Dataset struct {
	ID      string             `json:"id"`
	Hazard  string             `json:"hazard"`
	Records []NormalizedRecord `json:"records"`

	LoadedAt time.Time `json:"loaded_at"`
}

// Years returns the sorted distinct event years present in the dataset.
func (d Dataset) Years() []int {
	seen := make(map[int]struct{}, len(d.Records))
	for _, r := range d.Records {
		seen[r.EventYear] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// AggregationRequest selects which datasets and event years to aggregate.
// An empty year set means "all years"; an empty dataset set means "all
// provided datasets". Both defaults are deliberate: empty selection is not
// an empty result.
type AggregationRequest struct {
	DatasetIDs []string
	Years      []int
}

// ProvinceSeverity is one output row per canonical province code. A
// multi-province record contributes to every code it names, so EventCount
// here can exceed the record count (see package doc on double-counting).
type ProvinceSeverity struct {
	ProvinceCode    string  `json:"province_code"`
	EventCount      int     `json:"event_count"`
	TotalLossSum    float64 `json:"total_loss_sum"`
	AvgLossPerEvent float64 `json:"avg_loss_per_event"`
}

// SummaryStats describes the filtered record set before province expansion.
// OverallAvgSeverity is nil when no records matched the selection; a nil
// average is "undefined", distinct from a true zero.
type SummaryStats struct {
	YearCount          int      `json:"year_count"`
	TotalEvents        int      `json:"total_events"`
	OverallAvgSeverity *float64 `json:"overall_avg_severity"`
}

// AggregationResult is the output of one Aggregate call. Provinces is keyed
// by canonical code; provinces with zero matching events are omitted.
type AggregationResult struct {
	Provinces  map[string]ProvinceSeverity `json:"provinces"`
	Summary    SummaryStats                `json:"summary"`
	ComputedAt time.Time                   `json:"computed_at"`
}
