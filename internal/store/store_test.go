package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	s := NewMemory()

	s.Set("a", []byte("payload"), time.Hour)

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestMemory_Expiry(t *testing.T) {
	clock := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	s := NewMemoryWithClock(func() time.Time { return clock })

	s.Set("a", []byte("x"), time.Hour)

	clock = clock.Add(59 * time.Minute)
	_, ok := s.Get("a")
	assert.True(t, ok)

	clock = clock.Add(2 * time.Minute)
	_, ok = s.Get("a")
	assert.False(t, ok)
}

func TestMemory_SetRefreshesTTL(t *testing.T) {
	clock := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	s := NewMemoryWithClock(func() time.Time { return clock })

	s.Set("a", []byte("v1"), time.Hour)
	clock = clock.Add(50 * time.Minute)
	s.Set("a", []byte("v2"), time.Hour)

	clock = clock.Add(30 * time.Minute)
	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), got)
}

func TestMemory_Delete(t *testing.T) {
	s := NewMemory()
	s.Set("a", []byte("x"), time.Hour)
	s.Delete("a")

	_, ok := s.Get("a")
	assert.False(t, ok)
}

func TestMemory_ExpiredEntriesSwept(t *testing.T) {
	clock := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	s := NewMemoryWithClock(func() time.Time { return clock })

	s.Set("old", []byte("x"), time.Minute)
	clock = clock.Add(time.Hour)
	s.Set("new", []byte("y"), time.Minute)

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Len(t, s.entries, 1)
}
