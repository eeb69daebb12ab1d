package stations

import (
	"sort"
	"time"
)

// AllInstruments is the selector sentinel meaning "every loaded instrument".
const AllInstruments = "all"

// Column names every station file must carry.
const (
	ColumnName      = "name_station"
	ColumnProvince  = "nama_propinsi"
	ColumnCity      = "nama_kota"
	ColumnLatitude  = "latt_station"
	ColumnLongitude = "long_station"
	ColumnStatus    = "status_operasional"
)

// RequiredColumns lists the header fields the loader depends on.
var RequiredColumns = []string{
	ColumnName,
	ColumnProvince,
	ColumnCity,
	ColumnLatitude,
	ColumnLongitude,
	ColumnStatus,
}

// DefaultPalette is the marker color cycle, indexed by sorted dataset position.
var DefaultPalette = []string{"red", "blue", "green", "purple", "orange", "darkred", "lightblue"}

// StationRecord is a single observation station read from an instrument file.
// Latitude and Longitude are always valid coordinates.
type StationRecord struct {
	Name       string  `json:"name"`
	Province   string  `json:"province"`
	City       string  `json:"city"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Status     string  `json:"status"`
	Instrument string  `json:"instrument"`
	Color      string  `json:"color"`
	Geohash    string  `json:"geohash"`
	Row        int     `json:"row"` // position within the dataset
}

// Dataset holds the stations of one instrument file.
type Dataset struct {
	Name    string          `json:"name"`
	Color   string          `json:"color"`
	Index   int             `json:"index"`
	Source  string          `json:"source"`
	Dropped int             `json:"dropped"`
	Records []StationRecord `json:"records"`
}

// SkippedFile records an input file the loader rejected.
type SkippedFile struct {
	File    string   `json:"file"`
	Reason  string   `json:"reason"`
	Missing []string `json:"missing,omitempty"`
}

// DatasetCollection maps instrument names to their datasets. It is never
// mutated after the loader returns it.
type DatasetCollection struct {
	Dir        string              `json:"dir"`
	Signature  string              `json:"signature"`
	Generation string              `json:"generation"`
	LoadedAt   time.Time           `json:"loadedAt"`
	Datasets   map[string]*Dataset `json:"datasets"`
	Skipped    []SkippedFile       `json:"skipped,omitempty"`
}

// Names returns the instrument names in sorted order.
func (c *DatasetCollection) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Datasets))
	for name := range c.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dataset returns the named dataset.
func (c *DatasetCollection) Dataset(name string) (*Dataset, bool) {
	if c == nil {
		return nil, false
	}
	ds, ok := c.Datasets[name]
	return ds, ok
}

// Len returns the total number of stations across all datasets.
func (c *DatasetCollection) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, ds := range c.Datasets {
		n += len(ds.Records)
	}
	return n
}

// WorkingSet is the union of station records for the current selection.
type WorkingSet struct {
	// Instruments are the resolved instrument names, in selection order.
	Instruments []string `json:"instruments"`
	// Unknown are requested names that match no loaded dataset.
	Unknown []string `json:"unknown,omitempty"`
	// All is set when the selection resolved through the "all" fallback.
	All     bool            `json:"all"`
	Records []StationRecord `json:"stations"`
}

// Len returns the number of records in the working set.
func (ws WorkingSet) Len() int { return len(ws.Records) }

// Empty reports whether the working set has no records.
func (ws WorkingSet) Empty() bool { return len(ws.Records) == 0 }

// SingleInstrument returns the instrument name when exactly one concrete
// instrument was selected.
func (ws WorkingSet) SingleInstrument() (string, bool) {
	if ws.All || len(ws.Instruments) != 1 {
		return "", false
	}
	return ws.Instruments[0], true
}

// SummaryRow counts stations for one (instrument, province) pair.
type SummaryRow struct {
	No         int    `json:"no"`
	Instrument string `json:"instrument"`
	Province   string `json:"province"`
	Count      int    `json:"count"`
}

// ProvinceCluster groups the markers of one province.
type ProvinceCluster struct {
	Province string          `json:"province"`
	Records  []StationRecord `json:"markers"`
}
