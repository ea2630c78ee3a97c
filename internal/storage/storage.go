// Package storage selects and opens the post repository configured for this deployment.
package storage

import (
	"context"
	"fmt"

	"github.com/blogposts/blogposts-api/internal/config"
	"github.com/blogposts/blogposts-api/internal/database"
	"github.com/blogposts/blogposts-api/internal/post"
	"github.com/blogposts/blogposts-api/internal/post/repository"
	"github.com/blogposts/blogposts-api/pkg/logger"
)

const connectAttempts = 5

// Open returns the repository for cfg and a func releasing its connections.
// An auto-selected Mongo backend falls back to memory when the database is
// unreachable; an explicitly requested backend fails instead.
func Open(ctx context.Context, cfg *config.Config) (repository.Repository, func(), error) {
	backend := cfg.StorageBackend()
	switch backend {
	case config.BackendMemory:
		logger.Infof("using in-memory post storage")
		return repository.NewMemoryRepo(), func() {}, nil

	case config.BackendMongo:
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, connectAttempts)
		if err != nil {
			if cfg.Posts.Backend == config.BackendAuto {
				logger.Warnf("cannot connect to MongoDB (%v), using memory-backed repo", err)
				return repository.NewMemoryRepo(), func() {}, nil
			}
			return nil, nil, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		logger.Infof("using MongoDB post storage: %s.%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
		return repository.NewMongoRepo(col), func() { _ = client.Disconnect(context.Background()) }, nil

	case config.BackendPostgres:
		pool, err := database.ConnectPostgres(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns, cfg.Postgres.Timeout)
		if err != nil {
			return nil, nil, err
		}
		repo, err := repository.NewPostgresRepo(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Infof("using PostgreSQL post storage")
		return repo, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
}

// Seed inserts the sample posts into repo.
func Seed(ctx context.Context, repo repository.Repository) error {
	for _, p := range post.Samples() {
		if _, err := repo.Create(ctx, p); err != nil {
			return fmt.Errorf("seed post %q: %w", p.Title, err)
		}
		logger.Debugf("seeded post %s", p.ID)
	}
	return nil
}

// SeedIfEmpty seeds repo only when it holds no posts, so restarting a
// service against a persistent backend does not duplicate the samples.
func SeedIfEmpty(ctx context.Context, repo repository.Repository) (bool, error) {
	existing, err := repo.List(ctx, 1)
	if err != nil {
		return false, fmt.Errorf("check existing posts: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}
	return true, Seed(ctx, repo)
}
