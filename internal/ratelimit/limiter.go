// Package ratelimit provides a fixed-window request counter keyed by a
// caller-supplied string (IP+route, wallet address). Counters live in
// process memory: a single backend instance is the deployment target, and a
// multi-instance setup must front this with a shared store instead.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result reports whether a request may proceed and, when it may not, how
// long the caller should wait.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter counts requests per key in fixed windows.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry

	limit  int
	window time.Duration
	now    func() time.Time
}

// New creates a limiter allowing limit requests per window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		entries: make(map[string]*entry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow records a request against key and reports whether it is under the
// cap. The counter mutation is atomic per key.
func (l *Limiter) Allow(key string) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || !now.Before(e.resetAt) {
		l.entries[key] = &entry{count: 1, resetAt: now.Add(l.window)}
		return Result{Allowed: true}
	}

	if e.count >= l.limit {
		retry := e.resetAt.Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		return Result{Allowed: false, RetryAfter: retry}
	}

	e.count++
	return Result{Allowed: true}
}

// StartSweeper deletes expired windows on the given cadence until the
// context is cancelled, bounding memory in a long-running process.
func (l *Limiter) StartSweeper(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.sweep()
			}
		}
	}()
}

func (l *Limiter) sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, e := range l.entries {
		if !now.Before(e.resetAt) {
			delete(l.entries, key)
		}
	}
}

// Len reports the number of tracked keys. Test hook for sweep behavior.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
