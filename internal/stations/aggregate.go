package stations

import "sort"

type summaryKey struct {
	instrument string
	province   string
}

// Summarize counts stations per (instrument, province). Rows are ordered by
// instrument then province and numbered from 1. The second result is false
// when the working set is empty.
func Summarize(ws WorkingSet) ([]SummaryRow, bool) {
	if ws.Empty() {
		return nil, false
	}

	counts := make(map[summaryKey]int)
	for _, r := range ws.Records {
		counts[summaryKey{instrument: r.Instrument, province: r.Province}]++
	}

	keys := make([]summaryKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].instrument != keys[j].instrument {
			return keys[i].instrument < keys[j].instrument
		}
		return keys[i].province < keys[j].province
	})

	rows := make([]SummaryRow, 0, len(keys))
	for i, k := range keys {
		rows = append(rows, SummaryRow{
			No:         i + 1,
			Instrument: k.instrument,
			Province:   k.province,
			Count:      counts[k],
		})
	}
	return rows, true
}

// Total sums the counts of the given rows.
func Total(rows []SummaryRow) int {
	total := 0
	for _, r := range rows {
		total += r.Count
	}
	return total
}

// GroupByProvince splits a working set into per-province marker clusters,
// sorted by province. Records without a province are not clustered.
func GroupByProvince(ws WorkingSet) []ProvinceCluster {
	byProvince := make(map[string][]StationRecord)
	for _, r := range ws.Records {
		if r.Province == "" {
			continue
		}
		byProvince[r.Province] = append(byProvince[r.Province], r)
	}

	provinces := make([]string, 0, len(byProvince))
	for p := range byProvince {
		provinces = append(provinces, p)
	}
	sort.Strings(provinces)

	clusters := make([]ProvinceCluster, 0, len(provinces))
	for _, p := range provinces {
		clusters = append(clusters, ProvinceCluster{Province: p, Records: byProvince[p]})
	}
	return clusters
}
