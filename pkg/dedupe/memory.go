package dedupe

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process dedupe store. Expired entries are dropped lazily on
// access; there is no background sweeper.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithClock overrides the time source, used by tests to step through TTLs.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an empty in-process dedupe store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Remember implements notify.DedupeRepository.
func (m *Memory) Remember(ctx context.Context, key string, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = m.now().Add(ttl(ttlSeconds))
	return nil
}

// Exists implements notify.DedupeRepository.
func (m *Memory) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alive(key), nil
}

// RememberIfAbsent implements notify.AtomicDedupeRepository.
func (m *Memory) RememberIfAbsent(ctx context.Context, key string, ttlSeconds int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.alive(key) {
		return false, nil
	}
	m.entries[key] = m.now().Add(ttl(ttlSeconds))
	return true, nil
}

// alive reports whether key holds an unexpired entry, dropping it when
// expired. Must be called with mu held.
func (m *Memory) alive(key string) bool {
	expiry, ok := m.entries[key]
	if !ok {
		return false
	}
	if !expiry.After(m.now()) {
		delete(m.entries, key)
		return false
	}
	return true
}

// ttl floors the window at one second so a zero or negative TTL cannot
// disable deduplication by accident.
func ttl(seconds int) time.Duration {
	if seconds < 1 {
		seconds = 1
	}
	return time.Duration(seconds) * time.Second
}
