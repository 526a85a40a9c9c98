// Package domain models Canadian catastrophe (CAT) loss case data.
//
// # Data Source
//
// Case datasets are tabular files (CSV, XLSX, or legacy XLS), one file per
// hazard type (flood, wildfire, hail, ...). Every file must expose exactly
// three columns, matched by name, case-sensitive:
//
//	Provinces                  free-text province label(s)
//	Event_year                 calendar year of the CAT event
//	Total_losses_in_billions   insured loss in billions of CAD
//
// # Province Labels
//
// The Provinces column carries free text: a two-letter abbreviation ("ON"),
// a full name ("Ontario", "Québec"), a comma-separated list ("ON, QC"), or a
// named multi-province group ("Maritimes"). Labels are resolved against a
// [Catalog] to the canonical ISO 3166-2:CA codes ("CA-ON") used as the join
// key against geographic boundaries. Lookups are case-insensitive and ignore
// diacritics, so "québec" resolves the same as "Quebec". The default catalog
// also carries the misspellings of "Prairies" that appear in the source
// files.
//
// A record that resolves to no code at all is rejected; every accepted
// [NormalizedRecord] names at least one canonical code.
//
// # Aggregation Policy
//
// A multi-province record contributes its full loss value to every province
// it names. The per-province loss sums therefore double-count shared events;
// [SummaryStats] is computed over the original records, before province
// expansion, so the headline totals are not inflated. This mirrors how the
// source case data has always been reported and is deliberately preserved.
//
// An empty year selection means "all years". An empty filtered record set is
// a valid result with zero counts and an undefined overall average, not an
// error.
package domain
