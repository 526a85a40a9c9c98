package domain

// Aggregate merges the selected datasets, filters records by the selected
// years, and computes per-province severity plus summary statistics. It is
// a pure function of its inputs: no hidden state, safe to call from tests
// and from concurrent readers of the same immutable datasets.
//
// Selection defaults: an empty req.DatasetIDs selects every provided
// dataset; an empty req.Years selects every year. Empty selection is not an
// empty result.
//
// An empty filtered set is valid: the result carries zero counts and a nil
// (undefined) overall average, never an error.
func Aggregate(datasets []Dataset, req AggregationRequest) AggregationResult {
	selected := selectDatasets(datasets, req.DatasetIDs)
	filtered := filterByYears(selected, req.Years)

	provinces := make(map[string]ProvinceSeverity)
	for _, rec := range filtered {
		// Full loss attributed to every resolved code; see package doc on
		// the double-counting policy.
		for _, code := range rec.ProvinceCodes {
			p := provinces[code]
			p.ProvinceCode = code
			p.EventCount++
			p.TotalLossSum += rec.TotalLoss
			provinces[code] = p
		}
	}
	for code, p := range provinces {
		p.AvgLossPerEvent = p.TotalLossSum / float64(p.EventCount)
		provinces[code] = p
	}

	return AggregationResult{
		Provinces:  provinces,
		Summary:    summarize(filtered),
		ComputedAt: clock.Now(),
	}
}

func selectDatasets(datasets []Dataset, ids []string) []Dataset {
	if len(ids) == 0 {
		return datasets
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var selected []Dataset
	for _, ds := range datasets {
		if _, ok := want[ds.ID]; ok {
			selected = append(selected, ds)
		}
	}
	return selected
}

func filterByYears(datasets []Dataset, years []int) []NormalizedRecord {
	var want map[int]struct{}
	if len(years) > 0 {
		want = make(map[int]struct{}, len(years))
		for _, y := range years {
			want[y] = struct{}{}
		}
	}

	var filtered []NormalizedRecord
	for _, ds := range datasets {
		for _, rec := range ds.Records {
			if want != nil {
				if _, ok := want[rec.EventYear]; !ok {
					continue
				}
			}
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// summarize computes SummaryStats over the pre-expansion record set, so a
// record naming three provinces still counts as one event.
func summarize(records []NormalizedRecord) SummaryStats {
	stats := SummaryStats{TotalEvents: len(records)}
	if len(records) == 0 {
		return stats
	}

	years := make(map[int]struct{})
	var lossSum float64
	for _, rec := range records {
		years[rec.EventYear] = struct{}{}
		lossSum += rec.TotalLoss
	}
	stats.YearCount = len(years)

	avg := lossSum / float64(len(records))
	stats.OverallAvgSeverity = &avg
	return stats
}
