package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter keeps a sorted set of attempt timestamps per team and
// counts the trailing window before recording a new attempt. Trim and
// count run in one pipeline; the add is a separate round trip, keeping
// the original check-then-record ordering (the Nth attempt passes, the
// N+1th is blocked).
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	clock  func() time.Time
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window, clock: time.Now}
}

// WithClock is test-only for deterministic windows.
func (l *RateLimiter) WithClock(clock func() time.Time) *RateLimiter {
	l.clock = clock
	return l
}

func (l *RateLimiter) Allow(ctx context.Context, teamID string) (bool, error) {
	key := l.key(teamID)
	now := l.clock()
	cutoff := strconv.FormatInt(now.Add(-l.window).UnixNano(), 10)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", cutoff)
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit window: %w", err)
	}
	if countCmd.Val() >= int64(l.limit) {
		return false, nil
	}

	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString()
	record := l.client.TxPipeline()
	record.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixNano()), Member: member})
	record.Expire(ctx, key, l.window)
	if _, err := record.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit record: %w", err)
	}
	return true, nil
}

func (l *RateLimiter) key(teamID string) string {
	return "ratelimit:team:" + teamID
}
