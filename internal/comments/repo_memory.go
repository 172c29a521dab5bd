package comments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository for tests and local runs.
type MemoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]Comment
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[int64]Comment)}
}

func (r *MemoryRepo) Create(_ context.Context, c *Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now().UTC()
	r.rows[c.ID] = *c
	return nil
}

func (r *MemoryRepo) ListByPost(_ context.Context, postID int64) ([]Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Comment{}
	for _, c := range r.rows {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok || c.UserID != userID {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryRepo) CountByUser(_ context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.rows {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) Ping(context.Context) error { return nil }

func (r *MemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
