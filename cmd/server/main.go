package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/sanskarmk/NutritionTracker/config"
	httpDelivery "github.com/sanskarmk/NutritionTracker/internal/delivery/http"
	"github.com/sanskarmk/NutritionTracker/internal/domain"
	"github.com/sanskarmk/NutritionTracker/internal/infrastructure/metrics"
	"github.com/sanskarmk/NutritionTracker/internal/infrastructure/store"
	"github.com/sanskarmk/NutritionTracker/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Nutrition Tracker v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Storage Type: %s", cfg.Storage.Type)

	blobStore, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeStore()

	location, err := cfg.History.Location()
	if err != nil {
		log.Fatalf("Failed to load timezone: %v", err)
	}

	var (
		collector *metrics.Collector
		recorder  domain.Recorder = domain.NopRecorder{}
	)
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
		recorder = collector
		log.Printf("Metrics exposed on /metrics")
	}

	ctx := context.Background()
	tracker := usecase.NewTracker(blobStore, recorder, usecase.TrackerConfig{Location: location})
	if err := tracker.Load(ctx); err != nil {
		log.Fatalf("Failed to load tracker state: %v", err)
	}
	seedCatalog(ctx, tracker, cfg.Catalog.SeedPath)

	handler := httpDelivery.NewHandler(tracker, httpDelivery.HandlerConfig{
		AllowPastDeletes: cfg.History.AllowPastDeletes,
	})
	router := httpDelivery.SetupRouter(cfg, handler, collector)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openStore builds the configured BlobStore and a func releasing it
func openStore(cfg config.StorageConfig) (domain.BlobStore, func(), error) {
	switch cfg.Type {
	case config.StorageMemory:
		log.Printf("WARNING: memory storage selected, logs are lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	case config.StoragePostgres:
		db, err := store.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return wrapGorm(db)
	default:
		db, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("SQLite database: %s", cfg.SQLitePath)
		return wrapGorm(db)
	}
}

func wrapGorm(db *gorm.DB) (domain.BlobStore, func(), error) {
	gormStore, err := store.NewGormStore(db)
	if err != nil {
		return nil, nil, err
	}
	return gormStore, func() {
		if err := gormStore.Close(); err != nil {
			log.Printf("Failed to close storage: %v", err)
		}
	}, nil
}

// seedCatalog loads the seed file on first run. A missing file is not fatal.
func seedCatalog(ctx context.Context, tracker *usecase.Tracker, path string) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Catalog seed %s not found, starting with the stored catalog", path)
		return
	}
	if err != nil {
		log.Fatalf("Failed to read catalog seed: %v", err)
	}

	seeded, err := tracker.SeedCatalog(ctx, data)
	if err != nil {
		log.Fatalf("Failed to seed catalog: %v", err)
	}
	if seeded {
		log.Printf("Catalog seeded from %s", path)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
