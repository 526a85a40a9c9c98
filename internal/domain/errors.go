package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSourceUnavailable marks a dataset source that could not be read at all.
// It is a precondition failure, raised before validation begins, and is
// fatal only for that dataset: the caller may proceed with the remaining
// datasets.
var ErrSourceUnavailable = errors.New("source unavailable")

// SchemaError reports required columns missing from a source's header.
// It is fatal for the dataset; there is no partial load.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error in %s: missing columns %s", e.Source, strings.Join(e.Missing, ", "))
}

// RowFormatError reports a single structurally invalid row. The row is
// excluded from the dataset; the load continues and the exclusion is
// counted in the LoadReport.
type RowFormatError struct {
	Line   int    `json:"line"`
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (e *RowFormatError) Error() string {
	return fmt.Sprintf("row %d: field %s=%q: %s", e.Line, e.Field, e.Value, e.Reason)
}

// UnknownRegionError reports a province-label token that matched no catalog
// entry. Only the token is dropped; the record is kept unless its resolved
// code set becomes empty, in which case the row escalates to a
// RowFormatError.
type UnknownRegionError struct {
	Line  int    `json:"line"`
	Token string `json:"token"`
}

func (e *UnknownRegionError) Error() string {
	return fmt.Sprintf("row %d: unknown region %q", e.Line, e.Token)
}

// LoadReport accounts for every row of a dataset load. Rejections are
// reported alongside the partial result, never silently absorbed.
type LoadReport struct {
	DatasetID     string               `json:"dataset_id"`
	RowsAccepted  int                  `json:"rows_accepted"`
	RowsRejected  int                  `json:"rows_rejected"`
	RejectedRows  []RowFormatError     `json:"rejected_rows,omitempty"`
	UnknownTokens []UnknownRegionError `json:"unknown_tokens,omitempty"`
	GeneratedAt   time.Time            `json:"generated_at"`
}

// Clean reports whether the load accepted every row without dropping any
// token.
func (r LoadReport) Clean() bool {
	return r.RowsRejected == 0 && len(r.UnknownTokens) == 0
}
