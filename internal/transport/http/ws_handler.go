package http

import (
	"net/http"

	"github.com/gorilla/websocket"

	"classctf-service/internal/domain"
)

type outboundMessage struct {
	Type    string             `json:"type"`
	Payload domain.Leaderboard `json:"payload"`
}

// handleLeaderboardWS streams leaderboard snapshots for one game. The
// socket is push-only; the read loop exists to notice the client leaving.
func (a *API) handleLeaderboardWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game_id")
	if gameID == "" {
		http.Error(w, "missing game_id", http.StatusBadRequest)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	wsClients.Inc()
	defer wsClients.Dec()

	updates, cancel := a.play.SubscribeLeaderboard(gameID)
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				a.log.WithError(err).Debug("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// Initial snapshot so clients render without waiting for a submission.
	if snapshot, err := a.play.Leaderboard(r.Context(), gameID); err == nil {
		send <- outboundMessage{Type: "leaderboard", Payload: snapshot}
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
}
