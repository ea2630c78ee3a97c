package repository

import (
	"context"
	"sync"
	"time"

	"github.com/blogposts/blogposts-api/internal/post"
	"github.com/google/uuid"
)

// MemoryRepo is an in-process store used for development and tests.
// Records are kept in insertion order so List is stable.
type MemoryRepo struct {
	mu    sync.RWMutex
	order []string
	store map[string]*post.Post
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*post.Post)}
}

func (m *MemoryRepo) Create(_ context.Context, p *post.Post) (string, error) {
	rec := p.Clone()
	rec.ID = uuid.NewString()
	rec.Created = time.Now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[rec.ID] = rec
	m.order = append(m.order, rec.ID)

	p.ID = rec.ID
	p.Created = rec.Created
	return rec.ID, nil
}

func (m *MemoryRepo) Get(_ context.Context, id string) (*post.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.store[id]; ok {
		return p.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) List(_ context.Context, limit int) ([]*post.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*post.Post, 0, n)
	for _, id := range m.order[:n] {
		out = append(out, m.store[id].Clone())
	}
	return out, nil
}

func (m *MemoryRepo) Update(_ context.Context, id string, ch post.Changes) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return ErrNotFound
	}
	ch.Apply(p)
	return nil
}

func (m *MemoryRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return nil
	}
	delete(m.store, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryRepo) Ping(context.Context) error { return nil }
