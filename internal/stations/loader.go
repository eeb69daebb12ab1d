package stations

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	// ErrSchema is returned when a file header lacks a required column.
	ErrSchema = errors.New("missing required columns")
)

const utf8BOM = "\ufeff"

// coordinate carries the range rules applied to every parsed row.
type coordinate struct {
	Lat float64 `validate:"latitude"`
	Lon float64 `validate:"longitude"`
}

// Loader reads semicolon-delimited station files from a directory.
type Loader struct {
	palette  []string
	validate *validator.Validate
}

// NewLoader creates a Loader. An empty palette falls back to DefaultPalette.
func NewLoader(palette []string) *Loader {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	p := make([]string, len(palette))
	copy(p, palette)
	return &Loader{
		palette:  p,
		validate: validator.New(),
	}
}

// LoadDir reads every CSV file in dir. Files are processed in name order so
// the color of a dataset depends only on the set of file names. Files with a
// bad header, or whose instrument name was already taken by an earlier file,
// are skipped and listed in the result.
func (l *Loader) LoadDir(dir string) (*DatasetCollection, error) {
	files, err := listCSV(dir)
	if err != nil {
		return nil, err
	}

	sig, err := l.signatureOf(files)
	if err != nil {
		return nil, err
	}

	coll := &DatasetCollection{
		Dir:        dir,
		Signature:  sig,
		Generation: uuid.NewString(),
		LoadedAt:   time.Now().UTC(),
		Datasets:   make(map[string]*Dataset, len(files)),
	}

	index := 0
	for _, path := range files {
		if prev, dup := coll.Datasets[DatasetName(path)]; dup {
			log.Printf("WARN: loader: skipping %s: instrument %s already loaded from %s", path, prev.Name, filepath.Base(prev.Source))
			coll.Skipped = append(coll.Skipped, SkippedFile{
				File:   filepath.Base(path),
				Reason: "duplicate instrument name " + prev.Name,
			})
			continue
		}

		ds, err := l.LoadFile(path, index)
		if err != nil {
			var schemaErr *SchemaError
			if errors.As(err, &schemaErr) {
				log.Printf("WARN: loader: skipping %s: %v", path, err)
				coll.Skipped = append(coll.Skipped, SkippedFile{
					File:    filepath.Base(path),
					Reason:  ErrSchema.Error(),
					Missing: schemaErr.Missing,
				})
				continue
			}
			return nil, err
		}
		if ds.Dropped > 0 {
			log.Printf("INFO: loader: %s dropped %d rows with invalid coordinates", ds.Name, ds.Dropped)
		}
		coll.Datasets[ds.Name] = ds
		index++
	}

	log.Printf("INFO: loader: loaded %d datasets (%d stations) from %s", len(coll.Datasets), coll.Len(), dir)
	return coll, nil
}

// LoadFile parses a single station file. index selects the palette color.
func (l *Loader) LoadFile(path string, index int) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := l.Parse(f, DatasetName(path), index)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	ds.Source = path
	return ds, nil
}

// Parse reads station rows from r. Rows whose coordinates are missing,
// non-numeric or out of range are counted in Dropped and left out.
func (l *Loader) Parse(r io.Reader, name string, index int) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Missing: RequiredColumns}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Name:    name,
		Color:   l.palette[index%len(l.palette)],
		Index:   index,
		Records: make([]StationRecord, 0),
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				ds.Dropped++
				continue
			}
			return nil, fmt.Errorf("read row: %w", err)
		}

		rec, ok := l.record(row, cols)
		if !ok {
			ds.Dropped++
			continue
		}
		rec.Row = len(ds.Records)
		rec.Instrument = ds.Name
		rec.Color = ds.Color
		ds.Records = append(ds.Records, rec)
	}

	return ds, nil
}

func (l *Loader) record(row []string, cols map[string]int) (StationRecord, bool) {
	lat, ok := parseCoordinate(field(row, cols[ColumnLatitude]))
	if !ok {
		return StationRecord{}, false
	}
	lon, ok := parseCoordinate(field(row, cols[ColumnLongitude]))
	if !ok {
		return StationRecord{}, false
	}
	if err := l.validate.Struct(coordinate{Lat: lat, Lon: lon}); err != nil {
		return StationRecord{}, false
	}

	return StationRecord{
		Name:      field(row, cols[ColumnName]),
		Province:  field(row, cols[ColumnProvince]),
		City:      field(row, cols[ColumnCity]),
		Latitude:  lat,
		Longitude: lon,
		Status:    field(row, cols[ColumnStatus]),
		Geohash:   geohash.Encode(lat, lon),
	}, true
}

// SchemaError lists the required columns absent from a header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%v: %s", ErrSchema, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

func indexColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return cols, nil
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseCoordinate(s string) (float64, bool) {
	if s == "" || isHexFloat(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// isHexFloat reports whether s uses the 0x notation that ParseFloat accepts.
func isHexFloat(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// DatasetName derives the instrument name from a file path.
func DatasetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Signature fingerprints the CSV files of dir (names, sizes and modification
// times) together with the loader palette.
func (l *Loader) Signature(dir string) (string, error) {
	files, err := listCSV(dir)
	if err != nil {
		return "", err
	}
	return l.signatureOf(files)
}

func (l *Loader) signatureOf(files []string) (string, error) {
	h := sha256.New()
	fmt.Fprintf(h, "palette=%s\n", strings.Join(l.palette, ","))
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		fmt.Fprintf(h, "%s|%d|%d\n", filepath.Base(path), info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// listCSV returns the regular .csv files of dir sorted by name.
func listCSV(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
