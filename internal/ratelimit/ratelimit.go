// Package ratelimit throttles login attempts of the API daemon, either per
// process or shared through Redis.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter interface {
	Allow(key string) bool
}

// MemoryLimiter allows limit events per window for each key, with bursts up to limit.
type MemoryLimiter struct {
	mu      sync.Mutex
	limit   int
	every   rate.Limit
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	every := rate.Inf
	if limit > 0 && window > 0 {
		every = rate.Every(window / time.Duration(limit))
	}
	return &MemoryLimiter{
		limit:   limit,
		every:   every,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(key string) bool {
	if l == nil || l.limit <= 0 || key == "" {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.every, l.limit)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.sweep(now)
	return b.limiter.AllowN(now, 1)
}

// sweep drops buckets idle long enough to have refilled completely.
// It MUST be called while holding l.mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	if len(l.buckets) < 1024 || l.every == rate.Inf {
		return
	}
	idle := time.Duration(float64(l.limit) / float64(l.every) * float64(time.Second))
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > idle {
			delete(l.buckets, k)
		}
	}
}
