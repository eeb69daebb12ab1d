package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/climate-station-map/internal/common"
)

// AppConfig holds the dashboard settings.
type AppConfig struct {
	// DataDir holds one semicolon-delimited CSV file per instrument.
	DataDir string `yaml:"data_dir"`
	// AssetDir holds the pre-rendered PDF maps, named <instrument>.pdf.
	AssetDir string `yaml:"asset_dir"`

	// RefreshInterval controls how often the data directory is checked for changes.
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	// Palette is the marker color cycle.
	Palette []string `yaml:"palette"`

	Map MapConfig `yaml:"map"`

	Redis RedisConfig `yaml:"redis"`

	// Snapshot retention.
	StoreMaxHistory int           `yaml:"store_max_history"` // max number of in-memory snapshots (0 = unlimited)
	SnapshotTTL     time.Duration `yaml:"snapshot_ttl"`      // max age of snapshots (0 = unlimited)

	Port string `yaml:"port"`
}

// MapConfig controls the initial map view of the dashboard page.
type MapConfig struct {
	Title     string  `yaml:"title"`
	CenterLat float64 `yaml:"center_lat"`
	CenterLon float64 `yaml:"center_lon"`
	Zoom      int     `yaml:"zoom"`
}

// RedisConfig enables the shared snapshot store when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *AppConfig {
	return &AppConfig{
		DataDir:         "data",
		AssetDir:        "peta",
		RefreshInterval: 5 * time.Minute,
		Map: MapConfig{
			Title:     "Peta Jaringan Alat Pengamatan Iklim",
			CenterLat: -2.5,
			CenterLon: 118,
			Zoom:      5,
		},
		StoreMaxHistory: 4,
		SnapshotTTL:     24 * time.Hour,
		Port:            "8080",
	}
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) and then
// from the environment, which takes precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.DataDir = getenvDefault("DATA_DIR", cfg.DataDir)
	cfg.AssetDir = getenvDefault("ASSET_DIR", cfg.AssetDir)
	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.Map.Title = getenvDefault("APP_TITLE", cfg.Map.Title)

	var err error
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", cfg.RefreshInterval); err != nil {
		return nil, err
	}
	if cfg.SnapshotTTL, err = getenvDuration("SNAPSHOT_TTL", cfg.SnapshotTTL); err != nil {
		return nil, err
	}
	if cfg.Map.CenterLat, err = getenvFloat("MAP_CENTER_LAT", cfg.Map.CenterLat); err != nil {
		return nil, err
	}
	if cfg.Map.CenterLon, err = getenvFloat("MAP_CENTER_LON", cfg.Map.CenterLon); err != nil {
		return nil, err
	}
	cfg.Map.Zoom = getenvInt("MAP_ZOOM", cfg.Map.Zoom)
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", cfg.StoreMaxHistory)

	if v := os.Getenv("PALETTE"); v != "" {
		cfg.Palette = common.SplitList(v)
	}

	cfg.Redis.Addr = getenvDefault("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getenvDefault("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getenvInt("REDIS_DB", cfg.Redis.DB)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		return fmt.Errorf("invalid MAP_CENTER_LAT: %v", c.Map.CenterLat)
	}
	if c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		return fmt.Errorf("invalid MAP_CENTER_LON: %v", c.Map.CenterLon)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
