package store

import (
	"context"
	"sync"
	"time"

	"github.com/onchain-academy/gatekeeper/ports"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of ports.Store. It is safe for
// concurrent use within one process but shares nothing across instances;
// production deployments with more than one backend must use RedisStore.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// Set writes a key with a TTL, last writer wins.
func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

// Get retrieves a live value by key.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || s.now().After(e.expiresAt) {
		return "", ports.ErrNotFound
	}
	return e.value, nil
}

// GetDel retrieves and deletes a live value under one lock acquisition, so
// concurrent consumers of the same key cannot both succeed.
func (s *MemoryStore) GetDel(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return "", ports.ErrNotFound
	}
	delete(s.entries, key)
	if s.now().After(e.expiresAt) {
		return "", ports.ErrNotFound
	}
	return e.value, nil
}

// Delete removes a key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// StartSweeper deletes expired entries on the given cadence until the
// context is cancelled.
func (s *MemoryStore) StartSweeper(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *MemoryStore) sweep() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Len reports the number of stored keys, live or expired. Test hook.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
