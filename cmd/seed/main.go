// Command seed inserts the sample blog posts into the configured storage backend.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/blogposts/blogposts-api/internal/config"
	"github.com/blogposts/blogposts-api/internal/storage"
	"github.com/blogposts/blogposts-api/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	if err := run(); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.StorageBackend() == config.BackendMemory {
		logger.Warn("storage backend is memory; seeded posts will not outlive this process")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo, closeStorage, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer closeStorage()

	if err := storage.Seed(ctx, repo); err != nil {
		return err
	}
	logger.Infof("seeded sample posts into %s storage", cfg.StorageBackend())
	return nil
}
