package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRateLimiterBoundary(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(client, 10, time.Minute).WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		allowed, err := limiter.Allow(ctx, "team-1")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("attempt %d should be allowed", i)
		}
		now = now.Add(time.Second)
	}
	allowed, err := limiter.Allow(ctx, "team-1")
	if err != nil {
		t.Fatalf("allow 11: %v", err)
	}
	if allowed {
		t.Fatalf("11th attempt within the window must be blocked")
	}

	// Old attempts fall out of the trailing window.
	now = now.Add(2 * time.Minute)
	allowed, err = limiter.Allow(ctx, "team-1")
	if err != nil {
		t.Fatalf("allow after window: %v", err)
	}
	if !allowed {
		t.Fatalf("expected attempt allowed after window expired")
	}
}

func TestRateLimiterKeysPerTeam(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewRateLimiter(client, 1, time.Minute)
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, "team-1"); !allowed {
		t.Fatalf("first attempt blocked")
	}
	if !mr.Exists("ratelimit:team:team-1") {
		t.Fatalf("expected attempt recorded in redis")
	}
	if allowed, _ := limiter.Allow(ctx, "team-1"); allowed {
		t.Fatalf("second attempt should block at limit 1")
	}
	if allowed, _ := limiter.Allow(ctx, "team-2"); !allowed {
		t.Fatalf("other team must have its own window")
	}
}
