package memory

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterBoundary(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(10, time.Minute).WithClock(func() time.Time { return now })
	ctx := context.Background()

	// The 10th attempt within the window passes, the 11th is blocked.
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
}

func TestRateLimiterWindowSlides(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(10, time.Minute).WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if allowed, _ := limiter.Allow(ctx, "team-1"); !allowed {
			t.Fatalf("warmup attempt %d blocked", i)
		}
	}
	if allowed, _ := limiter.Allow(ctx, "team-1"); allowed {
		t.Fatalf("expected block at quota")
	}

	now = now.Add(61 * time.Second)
	if allowed, _ := limiter.Allow(ctx, "team-1"); !allowed {
		t.Fatalf("expected attempt allowed after window expired")
	}
}

func TestRateLimiterIsPerTeam(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	ctx := context.Background()

	if allowed, _ := limiter.Allow(ctx, "team-1"); !allowed {
		t.Fatalf("first attempt blocked")
	}
	if allowed, _ := limiter.Allow(ctx, "team-1"); allowed {
		t.Fatalf("second attempt for same team should block")
	}
	if allowed, _ := limiter.Allow(ctx, "team-2"); !allowed {
		t.Fatalf("other team must have its own window")
	}
}
