package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/i474232898/climate-station-map/internal/stations"
)

func setupRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping live redis test")
	}

	s, err := NewRedisStore(context.Background(), &redis.Options{Addr: addr}, time.Minute)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRedisStoreLive(t *testing.T) {
	s := setupRedisStore(t)
	ctx := context.Background()

	t.Run("missing snapshot", func(t *testing.T) {
		_, err := s.LoadCollection(ctx, "does-not-exist")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		sig := "test-" + time.Now().Format("150405.000000")
		coll := &stations.DatasetCollection{
			Signature:  sig,
			Generation: "gen",
			LoadedAt:   time.Now().UTC(),
			Datasets: map[string]*stations.Dataset{
				"raingauge": {Name: "raingauge", Color: "red", Records: []stations.StationRecord{
					{Name: "R1", Province: "A", Latitude: -6.2, Longitude: 106.8, Instrument: "raingauge"},
				}},
			},
		}
		if err := s.SaveCollection(ctx, coll); err != nil {
			t.Fatalf("save: %v", err)
		}
		t.Cleanup(func() { s.client.Del(ctx, snapshotKey(sig)) })

		got, err := s.LoadCollection(ctx, sig)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if got.Len() != 1 || got.Generation != "gen" {
			t.Fatalf("unexpected snapshot %+v", got)
		}
	})
}
