package stations

import "strings"

// IsAll reports whether name is the "all instruments" sentinel.
func IsAll(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), AllInstruments)
}

// ResolveInstruments turns a requested instrument list into the names to
// include. An empty request, or one containing the "all" sentinel, resolves
// to every loaded instrument. Otherwise the requested names are kept in
// request order, without duplicates; names with no dataset are returned in
// unknown.
func ResolveInstruments(coll *DatasetCollection, requested []string) (names, unknown []string, all bool) {
	if len(requested) == 0 {
		return coll.Names(), nil, true
	}
	for _, r := range requested {
		if IsAll(r) {
			return coll.Names(), nil, true
		}
	}

	seen := make(map[string]struct{}, len(requested))
	for _, r := range requested {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}

		if _, ok := coll.Dataset(r); ok {
			names = append(names, r)
		} else {
			unknown = append(unknown, r)
		}
	}

	// Only blank entries were given: same fallback as an empty request.
	if len(names) == 0 && len(unknown) == 0 {
		return coll.Names(), nil, true
	}
	return names, unknown, false
}

// Select merges the datasets of the requested instruments into a WorkingSet.
func Select(coll *DatasetCollection, requested []string) WorkingSet {
	names, unknown, all := ResolveInstruments(coll, requested)

	ws := WorkingSet{
		Instruments: names,
		Unknown:     unknown,
		All:         all,
	}

	n := 0
	for _, name := range names {
		ds, _ := coll.Dataset(name)
		n += len(ds.Records)
	}
	ws.Records = make([]StationRecord, 0, n)
	for _, name := range names {
		ds, _ := coll.Dataset(name)
		ws.Records = append(ws.Records, ds.Records...)
	}
	return ws
}
