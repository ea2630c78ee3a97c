package storage

import (
	"context"
	"testing"

	"github.com/blogposts/blogposts-api/internal/config"
	"github.com/blogposts/blogposts-api/internal/post/repository"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	cfg := &config.Config{Posts: config.PostsConfig{Backend: config.BackendMemory, ListLimit: 10}}
	repo, closeFn, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()
	require.IsType(t, &repository.MemoryRepo{}, repo)
	require.NoError(t, repo.Ping(context.Background()))
}

func TestOpenUnknownBackend(t *testing.T) {
	cfg := &config.Config{Posts: config.PostsConfig{Backend: "cassandra"}}
	_, _, err := Open(context.Background(), cfg)
	require.Error(t, err)
}

func TestSeedInsertsSamples(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	require.NoError(t, Seed(ctx, repo))

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "My Day", list[0].Title)
	require.Equal(t, "Svetlana", list[0].Author.FullName())
	require.Equal(t, "Going to the Movies", list[1].Title)
}

func TestSeedIfEmptySkipsPopulatedStore(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepo()

	seeded, err := SeedIfEmpty(ctx, repo)
	require.NoError(t, err)
	require.True(t, seeded)

	seeded, err = SeedIfEmpty(ctx, repo)
	require.NoError(t, err)
	require.False(t, seeded)

	list, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
}
