package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"classctf-service/internal/domain"
)

// ChallengeLoader fetches a game's challenge list from the backing store.
type ChallengeLoader interface {
	ChallengesByGame(ctx context.Context, gameID string) ([]domain.Challenge, error)
}

// ChallengeCache caches a game's challenge list with a jittered TTL to
// avoid repeated store hits while a class is playing.
type ChallengeCache struct {
	loader ChallengeLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedChallenges
}

type cachedChallenges struct {
	challenges []domain.Challenge
	expiresAt  time.Time
}

func NewChallengeCache(loader ChallengeLoader, ttl time.Duration) *ChallengeCache {
	return &ChallengeCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedChallenges),
	}
}

func (c *ChallengeCache) ChallengesByGame(ctx context.Context, gameID string) ([]domain.Challenge, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[gameID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.challenges, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(gameID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[gameID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.challenges, nil
		}
		c.mu.RUnlock()

		challenges, err := c.loader.ChallengesByGame(ctx, gameID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[gameID] = cachedChallenges{
			challenges: challenges,
			expiresAt:  now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return challenges, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Challenge), nil
}

// Invalidate drops the cached list after an authoring write.
func (c *ChallengeCache) Invalidate(_ context.Context, gameID string) {
	c.mu.Lock()
	delete(c.cache, gameID)
	c.mu.Unlock()
}

func (c *ChallengeCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
