package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/i474232898/climate-station-map/internal/stations"
)

var (
	// ErrNotFound is returned when no snapshot exists for a signature.
	ErrNotFound = errors.New("no snapshot for signature")
)

// MemoryStore is a concurrency-safe in-memory snapshot store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: directory signature
	data  map[string]*stations.DatasetCollection
	order []string // insertion order, oldest first

	// retention configuration
	maxHistory int           // max number of snapshots kept
	maxAge     time.Duration // optional max age, measured from LoadedAt
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*stations.DatasetCollection),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveCollection stores a collection under its signature and enforces retention.
func (s *MemoryStore) SaveCollection(_ context.Context, coll *stations.DatasetCollection) error {
	if coll == nil || coll.Signature == "" {
		return errors.New("collection has no signature")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[coll.Signature]; !ok {
		s.order = append(s.order, coll.Signature)
	}
	s.data[coll.Signature] = coll

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.order) > s.maxHistory {
		over := len(s.order) - s.maxHistory
		for _, sig := range s.order[:over] {
			delete(s.data, sig)
		}
		s.order = s.order[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		kept := s.order[:0]
		for _, sig := range s.order {
			if s.data[sig].LoadedAt.Before(cutoff) {
				delete(s.data, sig)
				continue
			}
			kept = append(kept, sig)
		}
		s.order = kept
	}
	return nil
}

// LoadCollection returns the collection stored for signature.
func (s *MemoryStore) LoadCollection(_ context.Context, signature string) (*stations.DatasetCollection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll, ok := s.data[signature]
	if !ok {
		return nil, ErrNotFound
	}
	if s.maxAge > 0 && time.Since(coll.LoadedAt) > s.maxAge {
		return nil, ErrNotFound
	}
	return coll, nil
}

// Len returns the number of stored snapshots.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
