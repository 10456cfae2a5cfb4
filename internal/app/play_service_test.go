package app_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"classctf-service/internal/app"
	"classctf-service/internal/domain"
	"classctf-service/internal/infra/memory"
)

type playFixture struct {
	store *memory.Store
	play  *app.PlayService
}

func newPlayFixture(t *testing.T) *playFixture {
	t.Helper()
	store := memory.NewStore()
	log := logrus.New()
	log.SetOutput(io.Discard)
	play := app.NewPlayService(
		store, store, store, store, store,
		memory.NewRateLimiter(10, time.Minute),
		memory.NewChallengeCache(store, time.Minute),
		app.NewBroadcaster(nil, log),
		log,
	)
	return &playFixture{store: store, play: play}
}

func (f *playFixture) seedGame(t *testing.T, settings domain.GameSettings) domain.Game {
	t.Helper()
	game := domain.Game{
		ID:        "game-1",
		TeacherID: "teacher-1",
		Title:     "Cipher Hunt",
		GameCode:  "ABC234",
		Status:    domain.GameStatusActive,
		Settings:  settings,
	}
	if err := f.store.CreateGame(context.Background(), &game); err != nil {
		t.Fatalf("seed game: %v", err)
	}
	return game
}

func (f *playFixture) seedChallenge(t *testing.T, id, gameID, answer string, points int) domain.Challenge {
	t.Helper()
	challenge := domain.Challenge{
		ID:     id,
		GameID: gameID,
		Title:  "Challenge " + id,
		Type:   domain.AnswerTypeText,
		Points: points,
		Answer: domain.NormalizeAnswer(answer),
	}
	if err := f.store.CreateChallenge(context.Background(), &challenge); err != nil {
		t.Fatalf("seed challenge: %v", err)
	}
	return challenge
}

func TestJoinGameIssuesSessionToken(t *testing.T) {
	f := newPlayFixture(t)
	f.seedGame(t, domain.DefaultGameSettings())

	team, err := f.play.JoinGame(context.Background(), "ABC234", "Red Team")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(team.SessionToken) != domain.SessionTokenLength {
		t.Fatalf("token length = %d, want %d", len(team.SessionToken), domain.SessionTokenLength)
	}
	if team.TotalPoints != 0 || team.SolvedCount != 0 {
		t.Fatalf("new team should start at zero, got %d points %d solves", team.TotalPoints, team.SolvedCount)
	}
}

func TestJoinGameRequiresActiveStatus(t *testing.T) {
	f := newPlayFixture(t)
	game := f.seedGame(t, domain.DefaultGameSettings())
	game.Status = domain.GameStatusDraft
	if err := f.store.UpdateGame(context.Background(), &game); err != nil {
		t.Fatalf("update game: %v", err)
	}

	if _, err := f.play.JoinGame(context.Background(), "ABC234", "Red Team"); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("err = %v, want ErrGameNotFound", err)
	}
}

func TestJoinGameFull(t *testing.T) {
	f := newPlayFixture(t)
	settings := domain.DefaultGameSettings()
	settings.MaxTeams = 2
	f.seedGame(t, settings)

	ctx := context.Background()
	if _, err := f.play.JoinGame(ctx, "ABC234", "Alpha"); err != nil {
		t.Fatalf("join alpha: %v", err)
	}
	if _, err := f.play.JoinGame(ctx, "ABC234", "Beta"); err != nil {
		t.Fatalf("join beta: %v", err)
	}
	if _, err := f.play.JoinGame(ctx, "ABC234", "Gamma"); !errors.Is(err, domain.ErrGameFull) {
		t.Fatalf("err = %v, want ErrGameFull", err)
	}
}

func TestJoinGameDuplicateName(t *testing.T) {
	f := newPlayFixture(t)
	f.seedGame(t, domain.DefaultGameSettings())

	ctx := context.Background()
	if _, err := f.play.JoinGame(ctx, "ABC234", "Red Team"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := f.play.JoinGame(ctx, "ABC234", "Red Team"); !errors.Is(err, domain.ErrTeamNameTaken) {
		t.Fatalf("err = %v, want ErrTeamNameTaken", err)
	}
}

func TestSubmitAnswerNormalizesBeforeComparing(t *testing.T) {
	f := newPlayFixture(t)
	game := f.seedGame(t, domain.DefaultGameSettings())
	f.seedChallenge(t, "ch-1", game.ID, "Paris", 100)

	ctx := context.Background()
	team, err := f.play.JoinGame(ctx, "ABC234", "Red Team")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	result, err := f.play.SubmitAnswer(ctx, team.SessionToken, "ch-1", "  Paris ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.IsCorrect {
		t.Fatalf("whitespace and case must not matter, got incorrect")
	}
	if result.PointsAwarded != 100 || result.TotalPoints != 100 {
		t.Fatalf("awarded %d total %d, want 100/100", result.PointsAwarded, result.TotalPoints)
	}
	if result.Message != "Correct! +100 points" {
		t.Fatalf("message = %q", result.Message)
	}
}

func TestSubmitAnswerIncorrect(t *testing.T) {
	f := newPlayFixture(t)
	game := f.seedGame(t, domain.DefaultGameSettings())
	f.seedChallenge(t, "ch-1", game.ID, "paris", 100)

	ctx := context.Background()
	team, _ := f.play.JoinGame(ctx, "ABC234", "Red Team")

	result, err := f.play.SubmitAnswer(ctx, team.SessionToken, "ch-1", "london")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.IsCorrect || result.PointsAwarded != 0 {
		t.Fatalf("wrong answer scored: %+v", result)
	}
	if result.Message != "Incorrect. Try again!" {
		t.Fatalf("message = %q", result.Message)
	}
}

func TestSubmitAnswerAlreadySolved(t *testing.T) {
	f := newPlayFixture(t)
	game := f.seedGame(t, domain.DefaultGameSettings())
	f.seedChallenge(t, "ch-1", game.ID, "paris", 100)

	ctx := context.Background()
	team, _ := f.play.JoinGame(ctx, "ABC234", "Red Team")

	if _, err := f.play.SubmitAnswer(ctx, team.SessionToken, "ch-1", "paris"); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	result, err := f.play.SubmitAnswer(ctx, team.SessionToken, "ch-1", "paris")
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if !result.AlreadySolved {
		t.Fatalf("expected already solved")
	}
	if result.PointsAwarded != 0 || result.TotalPoints != 100 {
		t.Fatalf("repeat solve changed score: %+v", result)
	}
	if result.Message != "Challenge already solved!" {
		t.Fatalf("message = %q", result.Message)
	}
}

func TestSubmitAnswerRateLimited(t *testing.T) {
	f := newPlayFixture(t)
	game := f.seedGame(t, domain.DefaultGameSettings())
	f.seedChallenge(t, "ch-1", game.ID, "paris", 100)

	ctx := context.Background()
	team, _ := f.play.JoinGame(ctx, "ABC234", "Red Team")

	for i := 0; i < 10; i++ {
		if _, err := f.play.SubmitAnswer(ctx, team.SessionToken, "ch-1", "wrong"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	if _, err := f.play.SubmitAnswer(ctx, team.SessionToken, "ch-1", "wrong"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
}

func TestSubmitAnswerChallengeScopedToGame(t *testing.T) {
	f := newPlayFixture(t)
	game := f.seedGame(t, domain.DefaultGameSettings())
	f.seedChallenge(t, "ch-1", game.ID, "paris", 100)

	other := domain.Game{ID: "game-2", TeacherID: "teacher-2", Title: "Other", GameCode: "XYZ789", Status: domain.GameStatusActive, Settings: domain.DefaultGameSettings()}
	if err := f.store.CreateGame(context.Background(), &other); err != nil {
		t.Fatalf("seed other game: %v", err)
	}
	f.seedChallenge(t, "ch-foreign", other.ID, "paris", 100)

	ctx := context.Background()
	team, _ := f.play.JoinGame(ctx, "ABC234", "Red Team")

	if _, err := f.play.SubmitAnswer(ctx, team.SessionToken, "ch-foreign", "paris"); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("err = %v, want ErrChallengeNotFound", err)
	}
}

func TestSubmitAnswerUnknownSession(t *testing.T) {
	f := newPlayFixture(t)
	if _, err := f.play.SubmitAnswer(context.Background(), "bogus", "ch-1", "x"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

// Two teams solving different challenges at the same moment must both be
// credited; the increments run against the store, not a stale struct.
func TestConcurrentSolvesDoNotLosePoints(t *testing.T) {
	f := newPlayFixture(t)
	game := f.seedGame(t, domain.DefaultGameSettings())
	f.seedChallenge(t, "ch-50", game.ID, "fifty", 50)
	f.seedChallenge(t, "ch-30", game.ID, "thirty", 30)

	ctx := context.Background()
	team, _ := f.play.JoinGame(ctx, "ABC234", "Red Team")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if _, err := f.play.SubmitAnswer(ctx, team.SessionToken, "ch-50", "fifty"); err != nil {
			t.Errorf("submit fifty: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := f.play.SubmitAnswer(ctx, team.SessionToken, "ch-30", "thirty"); err != nil {
			t.Errorf("submit thirty: %v", err)
		}
	}()
	wg.Wait()

	updated, err := f.store.TeamByToken(ctx, team.SessionToken)
	if err != nil {
		t.Fatalf("reload team: %v", err)
	}
	if updated.TotalPoints != 80 {
		t.Fatalf("total = %d, want 80", updated.TotalPoints)
	}
	if updated.SolvedCount != 2 {
		t.Fatalf("solved = %d, want 2", updated.SolvedCount)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	f := newPlayFixture(t)
	game := f.seedGame(t, domain.DefaultGameSettings())

	ctx := context.Background()
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	teams := []domain.Team{
		{ID: "t1", GameID: game.ID, Name: "Zebra", SessionToken: "tok-1", TotalPoints: 100, UpdatedAt: base.Add(2 * time.Minute)},
		{ID: "t2", GameID: game.ID, Name: "Apple", SessionToken: "tok-2", TotalPoints: 100, UpdatedAt: base.Add(time.Minute)},
		{ID: "t3", GameID: game.ID, Name: "Mango", SessionToken: "tok-3", TotalPoints: 200, UpdatedAt: base.Add(3 * time.Minute)},
	}
	for i := range teams {
		if err := f.store.CreateTeam(ctx, &teams[i]); err != nil {
			t.Fatalf("seed team: %v", err)
		}
	}

	lb, err := f.play.Leaderboard(ctx, game.ID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	got := []string{lb.Entries[0].Name, lb.Entries[1].Name, lb.Entries[2].Name}
	want := []string{"Mango", "Apple", "Zebra"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestChallengesForTeamStableShuffle(t *testing.T) {
	f := newPlayFixture(t)
	settings := domain.DefaultGameSettings()
	settings.ShuffleChallenges = true
	game := f.seedGame(t, settings)
	for _, id := range []string{"ch-a", "ch-b", "ch-c", "ch-d"} {
		f.seedChallenge(t, id, game.ID, "answer", 100)
	}

	ctx := context.Background()
	team, _ := f.play.JoinGame(ctx, "ABC234", "Red Team")

	first, err := f.play.ChallengesForTeam(ctx, team.SessionToken)
	if err != nil {
		t.Fatalf("challenges: %v", err)
	}
	second, err := f.play.ChallengesForTeam(ctx, team.SessionToken)
	if err != nil {
		t.Fatalf("challenges again: %v", err)
	}
	if len(first) != 4 || len(second) != 4 {
		t.Fatalf("lengths %d %d, want 4", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("shuffle must be stable per team: %v vs %v", first, second)
		}
	}
}

func TestSubmitReflectionOncePerTeam(t *testing.T) {
	f := newPlayFixture(t)
	game := f.seedGame(t, domain.DefaultGameSettings())
	f.seedChallenge(t, "ch-1", game.ID, "paris", 100)

	ctx := context.Background()
	team, _ := f.play.JoinGame(ctx, "ABC234", "Red Team")

	hardest := "ch-1"
	if err := f.play.SubmitReflection(ctx, team.SessionToken, &hardest, "More crypto puzzles", nil); err != nil {
		t.Fatalf("first reflection: %v", err)
	}
	err := f.play.SubmitReflection(ctx, team.SessionToken, nil, "Again", nil)
	if !errors.Is(err, domain.ErrReflectionExists) {
		t.Fatalf("err = %v, want ErrReflectionExists", err)
	}
}

func TestSubmitReflectionHardestMustBelongToGame(t *testing.T) {
	f := newPlayFixture(t)
	f.seedGame(t, domain.DefaultGameSettings())

	other := domain.Game{ID: "game-2", TeacherID: "teacher-2", Title: "Other", GameCode: "XYZ789", Status: domain.GameStatusActive, Settings: domain.DefaultGameSettings()}
	ctx := context.Background()
	if err := f.store.CreateGame(ctx, &other); err != nil {
		t.Fatalf("seed other game: %v", err)
	}
	f.seedChallenge(t, "ch-foreign", other.ID, "x", 100)

	team, _ := f.play.JoinGame(ctx, "ABC234", "Red Team")
	foreign := "ch-foreign"
	err := f.play.SubmitReflection(ctx, team.SessionToken, &foreign, "text", nil)
	if !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("err = %v, want ErrChallengeNotFound", err)
	}
}
