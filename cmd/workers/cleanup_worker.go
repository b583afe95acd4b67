package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jasamansinghchaggar/pdf-signature-app/internal/config"
	"github.com/jasamansinghchaggar/pdf-signature-app/internal/documents"
)

// CleanupWorker sweeps signature image assets that no signature row
// references. Failed embed and delete paths clean up after themselves on a
// best-effort basis only, so orphans accumulate slowly and are collected
// here.
type CleanupWorker struct {
	db     *sqlx.DB
	logger *zap.Logger
	config CleanupWorkerConfig
}

// CleanupWorkerConfig configuration for the cleanup worker
type CleanupWorkerConfig struct {
	UploadDir string
	// MinAge protects assets belonging to embeds still in flight.
	MinAge time.Duration
}

// NewCleanupWorker creates a new cleanup worker
func NewCleanupWorker(db *sqlx.DB, logger *zap.Logger, config CleanupWorkerConfig) *CleanupWorker {
	if config.MinAge == 0 {
		config.MinAge = time.Hour
	}
	return &CleanupWorker{db: db, logger: logger, config: config}
}

// Sweep removes orphaned signature asset files in one pass.
func (w *CleanupWorker) Sweep(ctx context.Context) {
	sigDir := filepath.Join(w.config.UploadDir, documents.SignatureDir)
	entries, err := os.ReadDir(sigDir)
	if err != nil {
		w.logger.Error("reading signature directory failed", zap.Error(err))
		return
	}

	var referenced []string
	if err := w.db.SelectContext(ctx, &referenced,
		"SELECT signature_data FROM signatures WHERE signature_type IN ('image', 'draw')"); err != nil {
		w.logger.Error("listing referenced assets failed", zap.Error(err))
		return
	}
	known := make(map[string]struct{}, len(referenced))
	for _, rel := range referenced {
		known[filepath.Base(rel)] = struct{}{}
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := known[entry.Name()]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil || time.Since(info.ModTime()) < w.config.MinAge {
			continue
		}
		path := filepath.Join(sigDir, entry.Name())
		if err := os.Remove(path); err != nil {
			w.logger.Warn("orphan removal failed", zap.String("file", path), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		w.logger.Info("orphaned signature assets removed", zap.Int("count", removed))
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	worker := NewCleanupWorker(db, logger, CleanupWorkerConfig{
		UploadDir: cfg.Storage.UploadDir,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := cron.New()
	if _, err := c.AddFunc(cfg.Cleanup.Schedule, func() { worker.Sweep(ctx) }); err != nil {
		logger.Fatal("Invalid cleanup schedule", zap.String("schedule", cfg.Cleanup.Schedule), zap.Error(err))
	}
	c.Start()
	logger.Info("Cleanup worker started", zap.String("schedule", cfg.Cleanup.Schedule))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Cleanup worker shutting down")
	<-c.Stop().Done()
}
