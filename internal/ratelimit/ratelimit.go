// Package ratelimit implements the fixed-window per-IP request limiter for
// the audit endpoints.
package ratelimit

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts requests per key in fixed windows. Expired windows are
// reaped opportunistically on access.
type Limiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	count   int
	resetAt time.Time
}

// New creates a Limiter allowing max requests per window.
func New(window time.Duration, max int) *Limiter {
	return NewWithClock(window, max, time.Now)
}

// NewWithClock creates a Limiter with an injected clock.
func NewWithClock(window time.Duration, max int, now func() time.Time) *Limiter {
	return &Limiter{
		window:  window,
		max:     max,
		buckets: make(map[string]*bucket),
		now:     now,
	}
}

// Allow records a request for key and reports whether it is within the
// limit. When denied, retryAfter is the time until the window resets.
func (l *Limiter) Allow(key string) (allowed bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, b := range l.buckets {
		if now.After(b.resetAt) {
			delete(l.buckets, k)
		}
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{resetAt: now.Add(l.window)}
		l.buckets[key] = b
	}

	if b.count >= l.max {
		return false, b.resetAt.Sub(now)
	}
	b.count++
	return true, 0
}

// ClientIP extracts the caller's IP: first forwarded-for entry, then the
// real-IP header, then "unknown".
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	return "unknown"
}
