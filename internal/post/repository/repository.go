package repository

import (
	"context"
	"errors"

	"github.com/blogposts/blogposts-api/internal/post"
)

var (
	ErrNotFound = errors.New("post not found")
)

// Repository is the persistence contract the post service depends on.
// Delete is idempotent: removing an absent id is not an error.
type Repository interface {
	List(ctx context.Context, limit int) ([]*post.Post, error)
	Get(ctx context.Context, id string) (*post.Post, error)
	Create(ctx context.Context, p *post.Post) (string, error)
	Update(ctx context.Context, id string, ch post.Changes) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
