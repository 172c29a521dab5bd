package posts

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
	rows   map[int64]Post
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rows: make(map[int64]Post)}
}

func (r *MemoryRepo) Create(_ context.Context, p *Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now().UTC()
	if p.Topics == nil {
		p.Topics = []string{}
	}
	r.rows[p.ID] = *p
	return nil
}

func (r *MemoryRepo) List(context.Context) ([]Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Post, 0, len(r.rows))
	for _, p := range r.rows {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id, author int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok || p.Author != author {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryRepo) CountByAuthor(_ context.Context, author int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.rows {
		if p.Author == author {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) Ping(context.Context) error { return nil }

// Len reports how many posts are stored.
func (r *MemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
