package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/climate-station-map/internal/stations"
)

func snapshot(sig string, loadedAt time.Time) *stations.DatasetCollection {
	return &stations.DatasetCollection{
		Signature:  sig,
		Generation: "gen-" + sig,
		LoadedAt:   loadedAt,
		Datasets:   map[string]*stations.Dataset{},
	}
}

func TestMemoryStoreSaveAndLoad(t *testing.T) {
	s := NewMemoryStore(0, 0)
	ctx := context.Background()

	if _, err := s.LoadCollection(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.SaveCollection(ctx, snapshot("a", time.Now())); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.LoadCollection(ctx, "a")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Generation != "gen-a" {
		t.Fatalf("unexpected generation %s", got.Generation)
	}

	if err := s.SaveCollection(ctx, &stations.DatasetCollection{}); err == nil {
		t.Fatalf("expected error for a collection without signature")
	}
}

func TestMemoryStoreRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	ctx := context.Background()
	now := time.Now()

	for _, sig := range []string{"a", "b", "c"} {
		if err := s.SaveCollection(ctx, snapshot(sig, now)); err != nil {
			t.Fatalf("save %s: %v", sig, err)
		}
	}

	if s.Len() != 2 {
		t.Fatalf("expected 2 snapshots, got %d", s.Len())
	}
	if _, err := s.LoadCollection(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected oldest snapshot to be evicted, got %v", err)
	}
	if _, err := s.LoadCollection(ctx, "c"); err != nil {
		t.Fatalf("expected newest snapshot to be kept, got %v", err)
	}
}

func TestMemoryStoreRetentionByAge(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)
	ctx := context.Background()

	if err := s.SaveCollection(ctx, snapshot("old", time.Now().Add(-2*time.Hour))); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveCollection(ctx, snapshot("new", time.Now())); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := s.LoadCollection(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired snapshot to be gone, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 snapshot, got %d", s.Len())
	}
}
