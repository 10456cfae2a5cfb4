package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"classctf-service/internal/domain"
)

// LeaderboardFeed relays leaderboard snapshots over Redis pub/sub so
// every service instance delivers updates to its own websocket clients.
type LeaderboardFeed struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewLeaderboardFeed(client *redis.Client, log *logrus.Logger) *LeaderboardFeed {
	return &LeaderboardFeed{client: client, log: log}
}

func (f *LeaderboardFeed) Publish(ctx context.Context, lb domain.Leaderboard) error {
	data, err := json.Marshal(lb)
	if err != nil {
		return fmt.Errorf("marshal leaderboard: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel(lb.GameID), data).Err(); err != nil {
		return fmt.Errorf("publish leaderboard: %w", err)
	}
	return nil
}

// Subscribe listens for one game's snapshots until cancel is called. The
// returned channel closes when the subscription ends.
func (f *LeaderboardFeed) Subscribe(gameID string) (<-chan domain.Leaderboard, func(), error) {
	pubsub := f.client.Subscribe(context.Background(), f.channel(gameID))
	if _, err := pubsub.Receive(context.Background()); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe leaderboard: %w", err)
	}

	ch := make(chan domain.Leaderboard, 8)
	go func() {
		defer close(ch)
		for msg := range pubsub.Channel() {
			var lb domain.Leaderboard
			if err := json.Unmarshal([]byte(msg.Payload), &lb); err != nil {
				f.log.WithError(err).Warn("bad leaderboard payload on feed")
				continue
			}
			ch <- lb
		}
	}()
	cancel := func() { _ = pubsub.Close() }
	return ch, cancel, nil
}

func (f *LeaderboardFeed) channel(gameID string) string {
	return "leaderboard:game:" + gameID
}
