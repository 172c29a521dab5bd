package likes

import (
	"context"
	"sync"
	"time"
)

type key struct{ post, user int64 }

// MemoryRepo is an in-memory Repository for tests and local runs.
type MemoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[key]Like
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[key]Like)}
}

func (r *MemoryRepo) Create(_ context.Context, l *Like) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{l.PostID, l.UserID}
	if _, ok := r.rows[k]; ok {
		return ErrAlreadyLiked
	}
	r.nextID++
	l.ID = r.nextID
	l.CreatedAt = time.Now().UTC()
	r.rows[k] = *l
	return nil
}

func (r *MemoryRepo) Delete(_ context.Context, postID, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{postID, userID}
	if _, ok := r.rows[k]; !ok {
		return ErrNotFound
	}
	delete(r.rows, k)
	return nil
}

func (r *MemoryRepo) Exists(_ context.Context, postID, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[key{postID, userID}]
	return ok, nil
}

func (r *MemoryRepo) CountByPost(_ context.Context, postID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.rows {
		if k.post == postID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) CountByUser(_ context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.rows {
		if k.user == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) Ping(context.Context) error { return nil }
