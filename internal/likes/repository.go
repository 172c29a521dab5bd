package likes

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("like not found")
	ErrAlreadyLiked = errors.New("post already liked")
)

// Repository persists likes. Create returns ErrAlreadyLiked when (post, user)
// already exists.
type Repository interface {
	Create(ctx context.Context, l *Like) error
	Delete(ctx context.Context, postID, userID int64) error
	Exists(ctx context.Context, postID, userID int64) (bool, error)
	CountByPost(ctx context.Context, postID int64) (int, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	Ping(ctx context.Context) error
}
