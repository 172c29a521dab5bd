package comments

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("comment not found")

// Repository persists comments.
type Repository interface {
	Create(ctx context.Context, c *Comment) error
	// ListByPost returns the comments of postID, oldest first.
	ListByPost(ctx context.Context, postID int64) ([]Comment, error)
	// Delete removes id only when userID owns it; ErrNotFound otherwise.
	Delete(ctx context.Context, id, userID int64) error
	CountByUser(ctx context.Context, userID int64) (int, error)
	Ping(ctx context.Context) error
}
