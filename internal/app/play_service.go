package app

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"classctf-service/internal/domain"
)

// PlayService contains the player-side use cases: joining a game,
// submitting answers, reading the leaderboard, and reflections.
type PlayService struct {
	games       GameStore
	challenges  ChallengeStore
	teams       TeamStore
	submissions SubmissionStore
	reflections ReflectionStore
	limiter     RateLimiter
	cache       ChallengeCache
	broadcaster *Broadcaster
	log         *logrus.Logger
	now         func() time.Time
}

func NewPlayService(
	games GameStore,
	challenges ChallengeStore,
	teams TeamStore,
	submissions SubmissionStore,
	reflections ReflectionStore,
	limiter RateLimiter,
	cache ChallengeCache,
	broadcaster *Broadcaster,
	log *logrus.Logger,
) *PlayService {
	return &PlayService{
		games:       games,
		challenges:  challenges,
		teams:       teams,
		submissions: submissions,
		reflections: reflections,
		limiter:     limiter,
		cache:       cache,
		broadcaster: broadcaster,
		log:         log,
		now:         time.Now,
	}
}

// WithClock is test-only for deterministic timestamps.
func (s *PlayService) WithClock(now func() time.Time) *PlayService {
	s.now = now
	return s
}

// JoinGame creates a team in an active game and issues its session token.
func (s *PlayService) JoinGame(ctx context.Context, gameCode, teamName string) (domain.Team, error) {
	game, err := s.games.GameByCode(ctx, gameCode)
	if err != nil {
		return domain.Team{}, domain.ErrGameNotFound
	}
	if game.Status != domain.GameStatusActive {
		return domain.Team{}, domain.ErrGameNotFound
	}

	maxTeams := game.Settings.MaxTeams
	if maxTeams <= 0 {
		maxTeams = domain.DefaultGameSettings().MaxTeams
	}
	count, err := s.teams.CountTeams(ctx, game.ID)
	if err != nil {
		return domain.Team{}, fmt.Errorf("count teams: %w", err)
	}
	if count >= maxTeams {
		return domain.Team{}, domain.ErrGameFull
	}

	taken, err := s.teams.TeamNameExists(ctx, game.ID, teamName)
	if err != nil {
		return domain.Team{}, fmt.Errorf("check team name: %w", err)
	}
	if taken {
		return domain.Team{}, domain.ErrTeamNameTaken
	}

	now := s.now()
	team := domain.Team{
		ID:           uuid.NewString(),
		GameID:       game.ID,
		Name:         teamName,
		SessionToken: domain.NewSessionToken(),
		JoinedAt:     now,
		UpdatedAt:    now,
	}
	if err := s.teams.CreateTeam(ctx, &team); err != nil {
		return domain.Team{}, fmt.Errorf("create team: %w", err)
	}

	s.broadcastLeaderboard(ctx, game.ID)
	return team, nil
}

// SubmitAnswer runs the scoring workflow for one attempt:
// resolve token, short-circuit on an existing correct submission, rate
// limit, scope the challenge to the team's game, compare the normalized
// answer, append the attempt row, and atomically credit the team.
func (s *PlayService) SubmitAnswer(ctx context.Context, sessionToken, challengeID, answer string) (domain.SubmissionResult, error) {
	team, err := s.teams.TeamByToken(ctx, sessionToken)
	if err != nil {
		return domain.SubmissionResult{}, domain.ErrSessionNotFound
	}

	solved, err := s.submissions.HasCorrectSubmission(ctx, team.ID, challengeID)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("check prior solve: %w", err)
	}
	if solved {
		return domain.SubmissionResult{
			IsCorrect:     true,
			PointsAwarded: 0,
			Message:       "Challenge already solved!",
			TotalPoints:   team.TotalPoints,
			AlreadySolved: true,
		}, nil
	}

	allowed, err := s.limiter.Allow(ctx, team.ID)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("rate limit: %w", err)
	}
	if !allowed {
		return domain.SubmissionResult{}, domain.ErrRateLimited
	}

	challenge, err := s.challenges.ChallengeByID(ctx, challengeID)
	if err != nil || challenge.GameID != team.GameID {
		return domain.SubmissionResult{}, domain.ErrChallengeNotFound
	}

	correct := domain.VerifyAnswer(answer, challenge.Answer)
	awarded := 0
	if correct {
		awarded = challenge.Points
	}

	submission := domain.Submission{
		ID:            uuid.NewString(),
		TeamID:        team.ID,
		ChallengeID:   challenge.ID,
		Answer:        answer,
		IsCorrect:     correct,
		PointsAwarded: awarded,
		AttemptedAt:   s.now(),
	}
	if err := s.submissions.CreateSubmission(ctx, &submission); err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("record submission: %w", err)
	}

	total := team.TotalPoints
	if correct {
		updated, err := s.teams.AddSolve(ctx, team.ID, awarded)
		if err != nil {
			return domain.SubmissionResult{}, fmt.Errorf("credit team: %w", err)
		}
		total = updated.TotalPoints
		s.broadcastLeaderboard(ctx, team.GameID)
	}

	message := "Incorrect. Try again!"
	if correct {
		message = fmt.Sprintf("Correct! +%d points", awarded)
	}
	return domain.SubmissionResult{
		IsCorrect:     correct,
		PointsAwarded: awarded,
		Message:       message,
		TotalPoints:   total,
	}, nil
}

// ChallengesForTeam returns the player view of the team's game. Answers
// are never serialized; shuffle order is stable per team.
func (s *PlayService) ChallengesForTeam(ctx context.Context, sessionToken string) ([]domain.Challenge, error) {
	team, err := s.teams.TeamByToken(ctx, sessionToken)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	game, err := s.games.GameByID(ctx, team.GameID)
	if err != nil {
		return nil, domain.ErrGameNotFound
	}
	challenges, err := s.cache.ChallengesByGame(ctx, game.ID)
	if err != nil {
		return nil, fmt.Errorf("load challenges: %w", err)
	}
	if game.Settings.ShuffleChallenges {
		shuffled := make([]domain.Challenge, len(challenges))
		copy(shuffled, challenges)
		rnd := rand.New(rand.NewSource(seedFromID(team.ID)))
		rnd.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return shuffled, nil
	}
	return challenges, nil
}

// Leaderboard builds an ordered snapshot of a game's teams.
func (s *PlayService) Leaderboard(ctx context.Context, gameID string) (domain.Leaderboard, error) {
	teams, err := s.teams.TeamsByGame(ctx, gameID)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("load teams: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(teams))
	for _, team := range teams {
		entries = append(entries, domain.LeaderboardEntry{
			TeamID:      team.ID,
			Name:        team.Name,
			TotalPoints: team.TotalPoints,
			SolvedCount: team.SolvedCount,
		})
	}
	byID := make(map[string]domain.Team, len(teams))
	for _, team := range teams {
		byID[team.ID] = team
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		// Tie-break by who reached the score earlier, then name.
		ti, tj := byID[entries[i].TeamID], byID[entries[j].TeamID]
		if !ti.UpdatedAt.Equal(tj.UpdatedAt) {
			return ti.UpdatedAt.Before(tj.UpdatedAt)
		}
		return entries[i].Name < entries[j].Name
	})

	return domain.Leaderboard{
		GameID:    gameID,
		Entries:   entries,
		UpdatedAt: s.now(),
	}, nil
}

// SubscribeLeaderboard attaches a live feed for one game. The caller must
// invoke cancel.
func (s *PlayService) SubscribeLeaderboard(gameID string) (<-chan domain.Leaderboard, func()) {
	return s.broadcaster.Subscribe(gameID)
}

// SubmitReflection records the team's one post-game reflection.
func (s *PlayService) SubmitReflection(ctx context.Context, sessionToken string, hardestChallengeID *string, improvement string, liked *string) error {
	team, err := s.teams.TeamByToken(ctx, sessionToken)
	if err != nil {
		return domain.ErrSessionNotFound
	}
	if hardestChallengeID != nil {
		challenge, err := s.challenges.ChallengeByID(ctx, *hardestChallengeID)
		if err != nil || challenge.GameID != team.GameID {
			return domain.ErrChallengeNotFound
		}
	}
	reflection := domain.Reflection{
		ID:                 uuid.NewString(),
		GameID:             team.GameID,
		TeamID:             team.ID,
		HardestChallengeID: hardestChallengeID,
		ImprovementText:    improvement,
		LikedText:          liked,
		CreatedAt:          s.now(),
	}
	return s.reflections.CreateReflection(ctx, &reflection)
}

func (s *PlayService) broadcastLeaderboard(ctx context.Context, gameID string) {
	lb, err := s.Leaderboard(ctx, gameID)
	if err != nil {
		s.log.WithError(err).WithField("game_id", gameID).Warn("leaderboard snapshot failed")
		return
	}
	s.broadcaster.Publish(ctx, lb)
}

func seedFromID(id string) int64 {
	var seed int64
	for _, r := range id {
		seed = seed*31 + int64(r)
	}
	return seed
}
