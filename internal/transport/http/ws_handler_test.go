package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"classctf-service/internal/domain"
)

func TestLeaderboardWebSocket(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	game := domain.Game{ID: "game-1", TeacherID: "teacher-1", Title: "Cipher Hunt", GameCode: "ABC234", Status: domain.GameStatusActive, Settings: domain.DefaultGameSettings()}
	if err := f.store.CreateGame(ctx, &game); err != nil {
		t.Fatalf("seed game: %v", err)
	}
	challenge := domain.Challenge{ID: "11111111-2222-4333-8444-555555555555", GameID: game.ID, Title: "Capital", Type: domain.AnswerTypeText, Points: 100, Answer: "paris"}
	if err := f.store.CreateChallenge(ctx, &challenge); err != nil {
		t.Fatalf("seed challenge: %v", err)
	}

	u := "ws" + f.server.URL[len("http"):] + "/ws/leaderboard?game_id=game-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot arrives before any activity.
	msg := readLeaderboard(conn, t)
	if msg.Payload.GameID != "game-1" {
		t.Fatalf("initial snapshot game = %q", msg.Payload.GameID)
	}
	if len(msg.Payload.Entries) != 0 {
		t.Fatalf("initial entries = %d, want 0", len(msg.Payload.Entries))
	}

	// A join pushes a fresh snapshot.
	resp := f.request(t, http.MethodPost, "/api/teams", "", map[string]any{"game_code": "ABC234", "team_name": "Red Team"})
	var joined joinGameResponse
	decodeInto(t, resp, &joined)

	msg = waitForEntries(conn, t, 1)
	if msg.Payload.Entries[0].Name != "Red Team" {
		t.Fatalf("entry = %+v", msg.Payload.Entries[0])
	}

	// A correct submission pushes the updated score.
	resp = f.request(t, http.MethodPost, "/api/submissions", "", map[string]any{
		"session_token": joined.SessionToken,
		"challenge_id":  challenge.ID,
		"answer":        "paris",
	})
	resp.Body.Close()

	for deadline := time.Now().Add(3 * time.Second); time.Now().Before(deadline); {
		msg = readLeaderboard(conn, t)
		if len(msg.Payload.Entries) == 1 && msg.Payload.Entries[0].TotalPoints == 100 {
			return
		}
	}
	t.Fatalf("never saw the scored snapshot")
}

func TestLeaderboardWebSocketRequiresGameID(t *testing.T) {
	f := newAPIFixture(t)

	u := "ws" + f.server.URL[len("http"):] + "/ws/leaderboard"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("dial should fail without game_id")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 handshake rejection, got %+v", resp)
	}
}

func readLeaderboard(conn *websocket.Conn, t *testing.T) outboundMessage {
	t.Helper()
	var msg outboundMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "leaderboard" {
		t.Fatalf("message type = %q", msg.Type)
	}
	return msg
}

func waitForEntries(conn *websocket.Conn, t *testing.T, want int) outboundMessage {
	t.Helper()
	for deadline := time.Now().Add(3 * time.Second); time.Now().Before(deadline); {
		msg := readLeaderboard(conn, t)
		if len(msg.Payload.Entries) == want {
			return msg
		}
	}
	t.Fatalf("never saw %d entries", want)
	return outboundMessage{}
}
