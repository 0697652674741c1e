package sources

import (
	"sync"
	"time"
)

// RollingLimiter tracks a rolling request counter against a fixed window.
// Once the limit is reached, Allow returns false until the window resets.
// Safe for concurrent use: one limiter instance is shared by every search
// that hits the same source.
type RollingLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	count   int
	resetAt time.Time
	now     func() time.Time
}

// NewRollingLimiter creates a limiter allowing limit requests per window.
// A non-positive limit disables the limiter (Allow always succeeds).
func NewRollingLimiter(limit int, window time.Duration) *RollingLimiter {
	return &RollingLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow consumes one request slot. Returns false when the quota for the
// current window is exhausted.
func (l *RollingLimiter) Allow() bool {
	if l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollLocked()
	if l.count >= l.limit {
		return false
	}
	l.count++
	return true
}

// Remaining returns the number of request slots left in the current window.
func (l *RollingLimiter) Remaining() int {
	if l.limit <= 0 {
		return 1
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollLocked()
	remaining := l.limit - l.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// rollLocked resets the counter when the window has elapsed.
// Caller must hold l.mu.
func (l *RollingLimiter) rollLocked() {
	now := l.now()
	if l.resetAt.IsZero() || !now.Before(l.resetAt) {
		l.count = 0
		l.resetAt = now.Add(l.window)
	}
}
