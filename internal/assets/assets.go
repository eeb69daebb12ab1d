package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/i474232898/climate-station-map/internal/stations"
)

// ContentType is served for every map document.
const ContentType = "application/pdf"

const extension = ".pdf"

var (
	// ErrNotFound is returned when no map document exists for an instrument.
	ErrNotFound = errors.New("map document not found")
)

// Asset describes a pre-rendered map document.
type Asset struct {
	Instrument string `json:"instrument"`
	FileName   string `json:"fileName"`
	Size       int64  `json:"size"`
	Path       string `json:"-"`
}

// Store looks up map documents by instrument name in a single directory.
type Store struct {
	dir string
}

// NewStore creates a Store over dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Lookup returns the document of an instrument. The "all" sentinel and names
// that are not plain file names never match.
func (s *Store) Lookup(instrument string) (Asset, error) {
	if !validName(instrument) {
		return Asset{}, fmt.Errorf("%w: %q", ErrNotFound, instrument)
	}

	name := instrument + extension
	path := filepath.Join(s.dir, name)

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return Asset{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return Asset{
		Instrument: instrument,
		FileName:   name,
		Size:       info.Size(),
		Path:       path,
	}, nil
}

// Open looks up and opens the document of an instrument.
func (s *Store) Open(instrument string) (io.ReadCloser, Asset, error) {
	a, err := s.Lookup(instrument)
	if err != nil {
		return nil, Asset{}, err
	}
	f, err := os.Open(a.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Asset{}, fmt.Errorf("%w: %s", ErrNotFound, a.FileName)
		}
		return nil, Asset{}, err
	}
	return f, a, nil
}

func validName(name string) bool {
	if name == "" || stations.IsAll(name) {
		return false
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.Base(name) == name
}
