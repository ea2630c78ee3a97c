package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blogposts/blogposts-api/internal/post"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS blog_posts (
	seq               BIGSERIAL,
	id                UUID PRIMARY KEY,
	title             TEXT NOT NULL,
	content           TEXT NOT NULL,
	author_first_name TEXT NOT NULL DEFAULT '',
	author_last_name  TEXT NOT NULL DEFAULT '',
	publish_date      TIMESTAMPTZ,
	created           TIMESTAMPTZ NOT NULL
)`

const postColumns = `id, title, content, author_first_name, author_last_name, publish_date, created`

// PgxPool is the part of *pgxpool.Pool the repository uses.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresRepo stores posts in a single blog_posts table. The seq column
// preserves insertion order for List.
type PostgresRepo struct {
	pool PgxPool
}

// NewPostgresRepo ensures the table exists and returns the repository.
func NewPostgresRepo(ctx context.Context, pool PgxPool) (*PostgresRepo, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("ensure blog_posts table: %w", err)
	}
	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) Create(ctx context.Context, p *post.Post) (string, error) {
	id := uuid.NewString()
	// timestamptz keeps microseconds
	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err := r.pool.Exec(ctx,
		`INSERT INTO blog_posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, p.Title, p.Content, p.Author.FirstName, p.Author.LastName, p.PublishDate, now)
	if err != nil {
		return "", fmt.Errorf("insert post: %w", err)
	}
	p.ID = id
	p.Created = now
	return id, nil
}

func scanPost(row pgx.Row) (*post.Post, error) {
	var p post.Post
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Author.FirstName, &p.Author.LastName, &p.PublishDate, &p.Created); err != nil {
		return nil, err
	}
	p.Created = p.Created.UTC()
	return &p, nil
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*post.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	p, err := scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM blog_posts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select post: %w", err)
	}
	return p, nil
}

func (r *PostgresRepo) List(ctx context.Context, limit int) ([]*post.Post, error) {
	q := `SELECT ` + postColumns + ` FROM blog_posts ORDER BY seq`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select posts: %w", err)
	}
	defer rows.Close()
	out := []*post.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return out, nil
}

// buildUpdate renders the UPDATE statement for a non-empty changeset.
// The id is always the last argument.
func buildUpdate(id string, ch post.Changes) (string, []any) {
	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if ch.Title != nil {
		add("title", *ch.Title)
	}
	if ch.Content != nil {
		add("content", *ch.Content)
	}
	if ch.Author != nil {
		add("author_first_name", ch.Author.FirstName)
		add("author_last_name", ch.Author.LastName)
	}
	args = append(args, id)
	return fmt.Sprintf("UPDATE blog_posts SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)), args
}

func (r *PostgresRepo) Update(ctx context.Context, id string, ch post.Changes) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	if ch.Empty() {
		_, err := r.Get(ctx, id)
		return err
	}
	q, args := buildUpdate(id, ch)
	tag, err := r.pool.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
