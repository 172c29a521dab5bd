package posts

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("post not found")

// Repository persists posts.
type Repository interface {
	Create(ctx context.Context, p *Post) error
	// List returns every post, newest first.
	List(ctx context.Context) ([]Post, error)
	// Delete removes id only when author owns it; ErrNotFound otherwise.
	Delete(ctx context.Context, id, author int64) error
	CountByAuthor(ctx context.Context, author int64) (int, error)
	Ping(ctx context.Context) error
}
