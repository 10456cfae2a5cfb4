package app

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"classctf-service/internal/domain"
)

// Broadcaster fans leaderboard snapshots out to websocket subscribers.
// With a Feed configured, snapshots travel through it so that every
// instance (including the publisher) delivers them exactly once per
// subscriber; without one, delivery is purely in-process.
type Broadcaster struct {
	feed Feed
	log  *logrus.Logger

	mu    sync.Mutex
	games map[string]*gameSubscribers
}

type gameSubscribers struct {
	subs     map[chan domain.Leaderboard]struct{}
	stopFeed func()
}

func NewBroadcaster(feed Feed, log *logrus.Logger) *Broadcaster {
	return &Broadcaster{
		feed:  feed,
		log:   log,
		games: make(map[string]*gameSubscribers),
	}
}

// Publish sends a snapshot to all subscribers of the game.
func (b *Broadcaster) Publish(ctx context.Context, lb domain.Leaderboard) {
	if b.feed != nil {
		if err := b.feed.Publish(ctx, lb); err != nil {
			b.log.WithError(err).WithField("game_id", lb.GameID).Warn("leaderboard feed publish failed")
		}
		return
	}
	b.deliver(lb)
}

// Subscribe returns a buffered channel of snapshots for one game. The
// caller must invoke the returned cancel function to avoid leaks.
func (b *Broadcaster) Subscribe(gameID string) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	b.mu.Lock()
	gs, ok := b.games[gameID]
	if !ok {
		gs = &gameSubscribers{subs: make(map[chan domain.Leaderboard]struct{})}
		b.games[gameID] = gs
		if b.feed != nil {
			b.attachFeedLocked(gameID, gs)
		}
	}
	gs.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		gs, ok := b.games[gameID]
		if !ok {
			return
		}
		if _, open := gs.subs[ch]; open {
			delete(gs.subs, ch)
			close(ch)
		}
		if len(gs.subs) == 0 {
			if gs.stopFeed != nil {
				gs.stopFeed()
			}
			delete(b.games, gameID)
		}
	}
	return ch, cancel
}

func (b *Broadcaster) attachFeedLocked(gameID string, gs *gameSubscribers) {
	updates, stop, err := b.feed.Subscribe(gameID)
	if err != nil {
		b.log.WithError(err).WithField("game_id", gameID).Warn("leaderboard feed subscribe failed")
		return
	}
	gs.stopFeed = stop
	go func() {
		for lb := range updates {
			b.deliver(lb)
		}
	}()
}

func (b *Broadcaster) deliver(lb domain.Leaderboard) {
	b.mu.Lock()
	defer b.mu.Unlock()
	gs, ok := b.games[lb.GameID]
	if !ok {
		return
	}
	for ch := range gs.subs {
		select {
		case ch <- lb:
		default:
			// Drop the stale snapshot so a slow client never blocks the rest.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
