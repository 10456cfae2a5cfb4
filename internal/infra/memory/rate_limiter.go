package memory

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a sliding-window attempt limiter keyed by team. The
// count is checked before the new attempt is recorded, so the Nth attempt
// in the window passes and the N+1th is blocked.
type RateLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu       sync.Mutex
	attempts map[string][]time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		window:   window,
		clock:    time.Now,
		attempts: make(map[string][]time.Time),
	}
}

// WithClock is test-only for deterministic windows.
func (l *RateLimiter) WithClock(clock func() time.Time) *RateLimiter {
	l.clock = clock
	return l
}

func (l *RateLimiter) Allow(_ context.Context, teamID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	cutoff := now.Add(-l.window)
	kept := l.attempts[teamID][:0]
	for _, at := range l.attempts[teamID] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) >= l.limit {
		l.attempts[teamID] = kept
		return false, nil
	}
	l.attempts[teamID] = append(kept, now)
	return true, nil
}
