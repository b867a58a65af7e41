// Package store provides the ephemeral TTL key→blob stores backing artifact
// downloads and fix-page snapshots. Nothing here is durable.
package store

import (
	"sync"
	"time"
)

// Store is a TTL'd key→blob map. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is the in-process Store. Expired entries are dropped
// opportunistically on access rather than by a background sweep.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates a Memory store using the wall clock.
func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock creates a Memory store with an injected clock, which
// makes TTL behavior deterministic in tests.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     now,
	}
}

// Get returns the value for key if present and unexpired.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()

	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl.
func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()
	m.entries[key] = entry{value: value, expiresAt: m.now().Add(ttl)}
}

// Delete removes key.
func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *Memory) sweepLocked() {
	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}
