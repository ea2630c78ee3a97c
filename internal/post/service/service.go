package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/blogposts/blogposts-api/internal/post"
	"github.com/blogposts/blogposts-api/internal/post/repository"
	"github.com/blogposts/blogposts-api/pkg/metrics"
)

var (
	ErrNotFound = errors.New("not found")
)

// requiredFields are checked in this order; only the first missing one is reported.
var requiredFields = []string{"title", "content", "author"}

// ValidationError is a client error. Message is returned to the client verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Service defines the post operations used by the handler layer.
type Service interface {
	List(ctx context.Context) ([]*post.Post, error)
	Get(ctx context.Context, id string) (*post.Post, error)
	Create(ctx context.Context, c *post.Candidate) (*post.Post, error)
	Update(ctx context.Context, id string, c *post.Candidate) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// New returns a Service over repo that lists at most listLimit posts.
func New(repo repository.Repository, listLimit int) Service {
	return &postService{repo: repo, listLimit: listLimit}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService(listLimit int) Service {
	return New(repository.NewMemoryRepo(), listLimit)
}

type postService struct {
	repo      repository.Repository
	listLimit int
}

// ValidateCreate reports the first required field missing from the candidate.
func ValidateCreate(c *post.Candidate) error {
	for _, field := range requiredFields {
		if !c.Has(field) {
			return &ValidationError{Message: fmt.Sprintf("Missing `%s` in request body", field)}
		}
	}
	return nil
}

// ValidateUpdate requires path and body ids to be present and identical.
func ValidateUpdate(pathID string, c *post.Candidate) error {
	if pathID == "" || c.ID == "" || pathID != c.ID {
		return &ValidationError{Message: fmt.Sprintf("Request path id (%s) and request body id (%s) must match", pathID, c.ID)}
	}
	return nil
}

func storageError(op string, err error) error {
	metrics.StorageErrors.WithLabelValues(op).Inc()
	return fmt.Errorf("%s post: %w", op, err)
}

func (s *postService) List(ctx context.Context) ([]*post.Post, error) {
	list, err := s.repo.List(ctx, s.listLimit)
	if err != nil {
		return nil, storageError("list", err)
	}
	return list, nil
}

func (s *postService) Get(ctx context.Context, id string) (*post.Post, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageError("get", err)
	}
	return p, nil
}

func (s *postService) Create(ctx context.Context, c *post.Candidate) (*post.Post, error) {
	if err := ValidateCreate(c); err != nil {
		return nil, err
	}
	p := c.Post()
	if _, err := s.repo.Create(ctx, p); err != nil {
		return nil, storageError("create", err)
	}
	return p, nil
}

func (s *postService) Update(ctx context.Context, id string, c *post.Candidate) error {
	if err := ValidateUpdate(id, c); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, c.Changes()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return storageError("update", err)
	}
	return nil
}

func (s *postService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storageError("delete", err)
	}
	return nil
}

func (s *postService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
