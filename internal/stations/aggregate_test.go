package stations

import (
	"reflect"
	"sort"
	"testing"
)

func testCollection() *DatasetCollection {
	return &DatasetCollection{
		Datasets: map[string]*Dataset{
			"raingauge": {
				Name: "raingauge",
				Records: []StationRecord{
					{Name: "R1", Province: "A", Instrument: "raingauge", Latitude: -1, Longitude: 100},
					{Name: "R2", Province: "B", Instrument: "raingauge", Latitude: -2, Longitude: 101},
					{Name: "R3", Province: "A", Instrument: "raingauge", Latitude: -3, Longitude: 102},
				},
			},
			"thermometer": {
				Name: "thermometer",
				Records: []StationRecord{
					{Name: "T1", Province: "A", Instrument: "thermometer", Latitude: -4, Longitude: 103},
				},
			},
			"empty": {Name: "empty", Records: []StationRecord{}},
		},
	}
}

func TestSummarizeExample(t *testing.T) {
	ws := Select(testCollection(), []string{"raingauge", "thermometer"})
	if ws.Len() != 4 {
		t.Fatalf("expected working set of 4, got %d", ws.Len())
	}

	rows, ok := Summarize(ws)
	if !ok {
		t.Fatalf("expected data")
	}

	want := []SummaryRow{
		{No: 1, Instrument: "raingauge", Province: "A", Count: 2},
		{No: 2, Instrument: "raingauge", Province: "B", Count: 1},
		{No: 3, Instrument: "thermometer", Province: "A", Count: 1},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("unexpected rows:\n got %+v\nwant %+v", rows, want)
	}
	if Total(rows) != ws.Len() {
		t.Fatalf("row counts sum to %d, working set has %d", Total(rows), ws.Len())
	}
}

func TestSummarizeEmpty(t *testing.T) {
	rows, ok := Summarize(Select(testCollection(), []string{"empty"}))
	if ok || len(rows) != 0 {
		t.Fatalf("expected no data, got %v %+v", ok, rows)
	}

	rows, ok = Summarize(Select(nil, nil))
	if ok || len(rows) != 0 {
		t.Fatalf("expected no data for nil collection, got %v %+v", ok, rows)
	}
}

func TestSummarizeCountsBlankProvince(t *testing.T) {
	ws := WorkingSet{Records: []StationRecord{
		{Instrument: "x", Province: ""},
		{Instrument: "x", Province: "P"},
	}}
	rows, _ := Summarize(ws)
	if Total(rows) != 2 || rows[0].Province != "" {
		t.Fatalf("expected blank province row first, got %+v", rows)
	}
}

func TestSelectAllMatchesUnionOfInstruments(t *testing.T) {
	coll := testCollection()

	names := func(ws WorkingSet) []string {
		var out []string
		for _, r := range ws.Records {
			out = append(out, r.Name)
		}
		sort.Strings(out)
		return out
	}

	var union []string
	for _, name := range coll.Names() {
		union = append(union, names(Select(coll, []string{name}))...)
	}
	sort.Strings(union)

	for _, req := range [][]string{nil, {}, {"all"}, {"ALL"}, {"raingauge", "all"}, {" "}} {
		ws := Select(coll, req)
		if !ws.All {
			t.Fatalf("request %q: expected all fallback", req)
		}
		if got := names(ws); !reflect.DeepEqual(got, union) {
			t.Fatalf("request %q: got %v, want %v", req, got, union)
		}
	}
}

func TestSelectUnknownAndDuplicates(t *testing.T) {
	ws := Select(testCollection(), []string{"thermometer", "barometer", "thermometer"})
	if !reflect.DeepEqual(ws.Instruments, []string{"thermometer"}) {
		t.Fatalf("unexpected instruments %v", ws.Instruments)
	}
	if !reflect.DeepEqual(ws.Unknown, []string{"barometer"}) {
		t.Fatalf("unexpected unknown %v", ws.Unknown)
	}
	if ws.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", ws.Len())
	}

	ws = Select(testCollection(), []string{"barometer"})
	if !ws.Empty() || ws.All {
		t.Fatalf("expected empty non-fallback working set, got %+v", ws)
	}
}

func TestSingleInstrument(t *testing.T) {
	coll := testCollection()

	if name, ok := Select(coll, []string{"raingauge"}).SingleInstrument(); !ok || name != "raingauge" {
		t.Fatalf("expected raingauge, got %q %v", name, ok)
	}
	if _, ok := Select(coll, []string{"all"}).SingleInstrument(); ok {
		t.Fatalf("all sentinel must not resolve to a single instrument")
	}
	if _, ok := Select(coll, []string{"raingauge", "thermometer"}).SingleInstrument(); ok {
		t.Fatalf("two instruments must not resolve to a single instrument")
	}

	single := &DatasetCollection{Datasets: map[string]*Dataset{"only": {Name: "only"}}}
	if _, ok := Select(single, nil).SingleInstrument(); ok {
		t.Fatalf("fallback selection must not resolve to a single instrument")
	}
}

func TestGroupByProvince(t *testing.T) {
	ws := Select(testCollection(), nil)
	ws.Records = append(ws.Records, StationRecord{Name: "X", Instrument: "raingauge"})

	clusters := GroupByProvince(ws)
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	if clusters[0].Province != "A" || len(clusters[0].Records) != 3 {
		t.Fatalf("unexpected cluster A: %+v", clusters[0])
	}
	if clusters[1].Province != "B" || len(clusters[1].Records) != 1 {
		t.Fatalf("unexpected cluster B: %+v", clusters[1])
	}
}
