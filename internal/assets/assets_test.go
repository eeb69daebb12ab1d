package assets

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLookup(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "raingauge.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "folder.pdf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	s := NewStore(dir)

	a, err := s.Lookup("raingauge")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if a.FileName != "raingauge.pdf" || a.Size != 8 {
		t.Fatalf("unexpected asset %+v", a)
	}

	for _, name := range []string{"", "all", "ALL", "thermometer", "../raingauge", "a/b", "..", "folder"} {
		if _, err := s.Lookup(name); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Lookup(%q): expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "raingauge.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewStore(dir)

	rc, a, err := s.Open("raingauge")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "%PDF-1.4" || a.Instrument != "raingauge" {
		t.Fatalf("unexpected content %q for %+v", b, a)
	}

	if _, _, err := s.Open("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
