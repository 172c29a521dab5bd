package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")
)

// Repository persists accounts. Create fills ID and timestamps on success and
// returns ErrEmailTaken or ErrUsernameTaken on a duplicate.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Ping(ctx context.Context) error
}
