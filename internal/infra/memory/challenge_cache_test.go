package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"classctf-service/internal/domain"
)

func TestChallengeCacheCaches(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	challenge := domain.Challenge{ID: uuid.NewString(), GameID: "game-1", Title: "First flag", Points: 100}
	if err := store.CreateChallenge(ctx, &challenge); err != nil {
		t.Fatalf("seed challenge: %v", err)
	}

	loader := &countingLoader{ChallengeLoader: store}
	cache := NewChallengeCache(loader, time.Minute)

	if _, err := cache.ChallengesByGame(ctx, "game-1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.ChallengesByGame(ctx, "game-1"); err != nil {
		t.Fatalf("load 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestChallengeCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	loader := &countingLoader{ChallengeLoader: store}
	cache := NewChallengeCache(loader, time.Minute)

	if _, err := cache.ChallengesByGame(ctx, "game-1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	cache.Invalidate(ctx, "game-1")
	if _, err := cache.ChallengesByGame(ctx, "game-1"); err != nil {
		t.Fatalf("load after invalidate: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

type countingLoader struct {
	ChallengeLoader
	calls int
}

func (l *countingLoader) ChallengesByGame(ctx context.Context, gameID string) ([]domain.Challenge, error) {
	l.calls++
	return l.ChallengeLoader.ChallengesByGame(ctx, gameID)
}
