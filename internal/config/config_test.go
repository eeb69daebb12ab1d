package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// clearEnv blanks every key Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "DATA_DIR", "ASSET_DIR", "PORT", "APP_TITLE", "REFRESH_INTERVAL",
		"SNAPSHOT_TTL", "MAP_CENTER_LAT", "MAP_CENTER_LON", "MAP_ZOOM", "STORE_MAX_HISTORY",
		"PALETTE", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Defaults()) {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data_dir: /srv/data
asset_dir: /srv/peta
refresh_interval: 10m
palette: [black, white]
map:
  title: Stations
  zoom: 7
redis:
  addr: localhost:6379
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ASSET_DIR", "/env/peta")
	t.Setenv("PALETTE", "red, blue,,green")
	t.Setenv("MAP_CENTER_LAT", "-6.2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.DataDir != "/srv/data" || cfg.AssetDir != "/env/peta" {
		t.Fatalf("unexpected dirs %q %q", cfg.DataDir, cfg.AssetDir)
	}
	if cfg.RefreshInterval != 10*time.Minute {
		t.Fatalf("unexpected interval %v", cfg.RefreshInterval)
	}
	if !reflect.DeepEqual(cfg.Palette, []string{"red", "blue", "green"}) {
		t.Fatalf("unexpected palette %v", cfg.Palette)
	}
	if cfg.Map.Title != "Stations" || cfg.Map.Zoom != 7 || cfg.Map.CenterLat != -6.2 || cfg.Map.CenterLon != 118 {
		t.Fatalf("unexpected map config %+v", cfg.Map)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected redis addr %q", cfg.Redis.Addr)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := map[string]string{
		"REFRESH_INTERVAL": "soon",
		"SNAPSHOT_TTL":     "1 day",
		"MAP_CENTER_LAT":   "100",
		"MAP_CENTER_LON":   "east",
		"CONFIG_FILE":      "/does/not/exist.yaml",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}
