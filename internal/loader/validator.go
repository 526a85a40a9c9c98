package loader

import (
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/cat-loss-atlas/internal/domain"
)

// Required source columns, matched by name, case-sensitive. These are the
// exact headers the upstream case files carry.
const (
	colProvinces = "Provinces"
	colEventYear = "Event_year"
	colTotalLoss = "Total_losses_in_billions"
)

// columnIndex locates the three required columns in a header row. A missing
// column is a SchemaError: the dataset fails as a whole, with no partial
// load.
type columnIndex struct {
	provinces int
	eventYear int
	totalLoss int
}

func findColumns(source string, header []string) (columnIndex, error) {
	idx := columnIndex{provinces: -1, eventYear: -1, totalLoss: -1}
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case colProvinces:
			idx.provinces = i
		case colEventYear:
			idx.eventYear = i
		case colTotalLoss:
			idx.totalLoss = i
		}
	}

	var missing []string
	if idx.provinces < 0 {
		missing = append(missing, colProvinces)
	}
	if idx.eventYear < 0 {
		missing = append(missing, colEventYear)
	}
	if idx.totalLoss < 0 {
		missing = append(missing, colTotalLoss)
	}
	if len(missing) > 0 {
		return idx, &domain.SchemaError{Source: source, Missing: missing}
	}
	return idx, nil
}

// rawRecord extracts a RawRecord from a data row using the resolved column
// positions. Cells past the end of a ragged row read as empty.
func (idx columnIndex) rawRecord(line int, row []string) domain.RawRecord {
	return domain.RawRecord{
		Line:      line,
		Provinces: cell(row, idx.provinces),
		EventYear: cell(row, idx.eventYear),
		TotalLoss: cell(row, idx.totalLoss),
	}
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseYear converts the Event_year cell to a positive integer year.
func parseYear(raw domain.RawRecord) (int, *domain.RowFormatError) {
	year, err := strconv.Atoi(raw.EventYear)
	if err != nil {
		return 0, &domain.RowFormatError{
			Line: raw.Line, Field: colEventYear, Value: raw.EventYear,
			Reason: "not an integer",
		}
	}
	if year <= 0 {
		return 0, &domain.RowFormatError{
			Line: raw.Line, Field: colEventYear, Value: raw.EventYear,
			Reason: "not a positive year",
		}
	}
	return year, nil
}

// parseLoss converts the Total_losses_in_billions cell to a non-negative
// finite float.
func parseLoss(raw domain.RawRecord) (float64, *domain.RowFormatError) {
	loss, err := strconv.ParseFloat(raw.TotalLoss, 64)
	if err != nil {
		return 0, &domain.RowFormatError{
			Line: raw.Line, Field: colTotalLoss, Value: raw.TotalLoss,
			Reason: "not a number",
		}
	}
	if math.IsNaN(loss) || math.IsInf(loss, 0) {
		return 0, &domain.RowFormatError{
			Line: raw.Line, Field: colTotalLoss, Value: raw.TotalLoss,
			Reason: "not finite",
		}
	}
	if loss < 0 {
		return 0, &domain.RowFormatError{
			Line: raw.Line, Field: colTotalLoss, Value: raw.TotalLoss,
			Reason: "negative loss",
		}
	}
	return loss, nil
}
