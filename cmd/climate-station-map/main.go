package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/i474232898/climate-station-map/internal/api/http"
	"github.com/i474232898/climate-station-map/internal/assets"
	"github.com/i474232898/climate-station-map/internal/config"
	"github.com/i474232898/climate-station-map/internal/scheduler"
	"github.com/i474232898/climate-station-map/internal/stations"
	"github.com/i474232898/climate-station-map/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Snapshot store: shared Redis when configured, otherwise in-memory.
	snapshots := newSnapshotStore(cfg)

	loader := stations.NewLoader(cfg.Palette)
	cache := stations.NewCache(loader, cfg.DataDir, snapshots)

	// Warm the cache so the first request does not pay for the parse.
	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := cache.Get(startCtx); err != nil {
		log.Printf("WARN: initial load of %s failed: %v", cfg.DataDir, err)
	}
	startCancel()

	// Scheduler that periodically checks the data directory for changes.
	sched := scheduler.New(cfg.RefreshInterval, cache)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "climate-station-map",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "climate-station-map",
		})
	})

	// API routes and dashboard page.
	httpapi.RegisterRoutes(app, cache, assets.NewStore(cfg.AssetDir))
	httpapi.RegisterDashboard(app, httpapi.PageConfig{
		Title:     cfg.Map.Title,
		CenterLat: cfg.Map.CenterLat,
		CenterLon: cfg.Map.CenterLon,
		Zoom:      cfg.Map.Zoom,
	})

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: serving %s on :%s", cfg.DataDir, cfg.Port)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

func newSnapshotStore(cfg *config.AppConfig) stations.SnapshotStore {
	if cfg.Redis.Addr == "" {
		return store.NewMemoryStore(cfg.StoreMaxHistory, cfg.SnapshotTTL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rs, err := store.NewRedisStore(ctx, &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.SnapshotTTL)
	if err != nil {
		log.Printf("WARN: redis unavailable, using in-memory snapshots: %v", err)
		return store.NewMemoryStore(cfg.StoreMaxHistory, cfg.SnapshotTTL)
	}
	return rs
}
