package users

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository for tests and local runs.
type MemoryRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]User
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[int64]User)}
}

func (r *MemoryRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
	}
	r.nextID++
	now := time.Now().UTC()
	u.ID = r.nextID
	u.CreatedAt = now
	u.UpdatedAt = now
	r.byID[u.ID] = *u
	return nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id int64) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryRepo) GetByEmail(_ context.Context, email string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) Ping(context.Context) error { return nil }
