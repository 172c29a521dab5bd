// Package ratelimit caps how many writes a single user may issue per window.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"microhub/pkg/utils"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Limiter counts one hit for key and reports whether it is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter shares a fixed window across every replica of a service.
type RedisLimiter struct {
	rdb    redis.Scripter
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(rdb redis.Scripter, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return utils.AllowFixedWindow(ctx, l.rdb, l.prefix+key, l.limit, l.window)
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-process token bucket per key: limit tokens refilled
// evenly over window.
type MemoryLimiter struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	entries   map[string]*entry
	lastSweep time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   rate.Limit(float64(limit) / window.Seconds()),
		burst:   limit,
		idle:    10 * window,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.now()

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	if now.Sub(l.lastSweep) > l.idle {
		l.sweepLocked(now)
	}
	l.mu.Unlock()

	return e.limiter.AllowN(now, 1), nil
}

// Len reports the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *MemoryLimiter) sweepLocked(now time.Time) {
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) > l.idle {
			delete(l.entries, k)
		}
	}
	l.lastSweep = now
}
