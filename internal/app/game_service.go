package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"classctf-service/internal/domain"
)

// GameService contains the teacher-side authoring use cases. Ownership is
// enforced here explicitly rather than delegated to database policies.
type GameService struct {
	games      GameStore
	challenges ChallengeStore
	cache      ChallengeCache
	now        func() time.Time
}

func NewGameService(games GameStore, challenges ChallengeStore, cache ChallengeCache) *GameService {
	return &GameService{games: games, challenges: challenges, cache: cache, now: time.Now}
}

// GameSummary is a game row plus its challenge count for list views.
type GameSummary struct {
	domain.Game
	ChallengeCount int `json:"challenge_count"`
}

// CreateGameParams carries validated input from the HTTP layer.
type CreateGameParams struct {
	Title       string
	Description string
	Settings    *domain.GameSettings
}

func (s *GameService) CreateGame(ctx context.Context, teacherID string, params CreateGameParams) (domain.Game, error) {
	settings := domain.DefaultGameSettings()
	if params.Settings != nil {
		settings = *params.Settings
	}
	now := s.now()
	game := domain.Game{
		ID:          uuid.NewString(),
		TeacherID:   teacherID,
		Title:       params.Title,
		Description: params.Description,
		GameCode:    domain.NewGameCode(),
		Status:      domain.GameStatusDraft,
		Settings:    settings,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.games.CreateGame(ctx, &game); err != nil {
		return domain.Game{}, fmt.Errorf("create game: %w", err)
	}
	return game, nil
}

func (s *GameService) ListGames(ctx context.Context, teacherID string) ([]GameSummary, error) {
	games, err := s.games.GamesByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	summaries := make([]GameSummary, 0, len(games))
	for _, game := range games {
		count, err := s.challenges.CountChallenges(ctx, game.ID)
		if err != nil {
			return nil, fmt.Errorf("count challenges: %w", err)
		}
		summaries = append(summaries, GameSummary{Game: game, ChallengeCount: count})
	}
	return summaries, nil
}

// GetGame returns an owned game with its challenges in order.
func (s *GameService) GetGame(ctx context.Context, teacherID, gameID string) (domain.Game, []domain.Challenge, error) {
	game, err := s.ownedGame(ctx, teacherID, gameID)
	if err != nil {
		return domain.Game{}, nil, err
	}
	challenges, err := s.challenges.ChallengesByGame(ctx, game.ID)
	if err != nil {
		return domain.Game{}, nil, fmt.Errorf("load challenges: %w", err)
	}
	return game, challenges, nil
}

// UpdateGameParams holds the patchable fields; nil means unchanged.
type UpdateGameParams struct {
	Title       *string
	Description *string
	Status      *domain.GameStatus
	Settings    *domain.GameSettings
}

func (s *GameService) UpdateGame(ctx context.Context, teacherID, gameID string, params UpdateGameParams) (domain.Game, error) {
	game, err := s.ownedGame(ctx, teacherID, gameID)
	if err != nil {
		return domain.Game{}, err
	}
	if params.Status != nil && *params.Status == domain.GameStatusActive {
		count, err := s.challenges.CountChallenges(ctx, game.ID)
		if err != nil {
			return domain.Game{}, fmt.Errorf("count challenges: %w", err)
		}
		if count == 0 {
			return domain.Game{}, domain.ErrGameNeedsChallenge
		}
	}
	if params.Title != nil {
		game.Title = *params.Title
	}
	if params.Description != nil {
		game.Description = *params.Description
	}
	if params.Status != nil {
		game.Status = *params.Status
	}
	if params.Settings != nil {
		game.Settings = *params.Settings
	}
	game.UpdatedAt = s.now()
	if err := s.games.UpdateGame(ctx, &game); err != nil {
		return domain.Game{}, fmt.Errorf("update game: %w", err)
	}
	return game, nil
}

func (s *GameService) DeleteGame(ctx context.Context, teacherID, gameID string) error {
	game, err := s.ownedGame(ctx, teacherID, gameID)
	if err != nil {
		return err
	}
	if err := s.games.DeleteGame(ctx, game.ID); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	s.cache.Invalidate(ctx, game.ID)
	return nil
}

// CreateChallengeParams carries validated authoring input. Answer is the
// raw text; it is normalized before storage and never kept in plaintext.
type CreateChallengeParams struct {
	GameID      string
	Title       string
	Description string
	Type        domain.AnswerType
	Points      int
	Answer      string
	Hints       []string
	Options     []string
	OrderIndex  int
	ImageURL    *string
}

func (s *GameService) CreateChallenge(ctx context.Context, teacherID string, params CreateChallengeParams) (domain.Challenge, error) {
	game, err := s.ownedGame(ctx, teacherID, params.GameID)
	if err != nil {
		return domain.Challenge{}, err
	}

	orderIndex := params.OrderIndex
	if orderIndex == 0 {
		count, err := s.challenges.CountChallenges(ctx, game.ID)
		if err != nil {
			return domain.Challenge{}, fmt.Errorf("count challenges: %w", err)
		}
		orderIndex = count
	}

	hints := params.Hints
	if hints == nil {
		hints = []string{}
	}
	challengeType := params.Type
	if challengeType == "" {
		challengeType = domain.AnswerTypeText
	}
	points := params.Points
	if points == 0 {
		points = 100
	}
	now := s.now()
	challenge := domain.Challenge{
		ID:          uuid.NewString(),
		GameID:      game.ID,
		Title:       params.Title,
		Description: params.Description,
		Type:        challengeType,
		Points:      points,
		Answer:      domain.NormalizeAnswer(params.Answer),
		Hints:       hints,
		Options:     params.Options,
		OrderIndex:  orderIndex,
		ImageURL:    params.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.challenges.CreateChallenge(ctx, &challenge); err != nil {
		return domain.Challenge{}, fmt.Errorf("create challenge: %w", err)
	}
	s.cache.Invalidate(ctx, game.ID)
	return challenge, nil
}

func (s *GameService) ListChallenges(ctx context.Context, teacherID, gameID string) ([]domain.Challenge, error) {
	game, err := s.ownedGame(ctx, teacherID, gameID)
	if err != nil {
		return nil, err
	}
	challenges, err := s.challenges.ChallengesByGame(ctx, game.ID)
	if err != nil {
		return nil, fmt.Errorf("load challenges: %w", err)
	}
	return challenges, nil
}

// UpdateChallengeParams holds patchable challenge fields; nil means unchanged.
type UpdateChallengeParams struct {
	Title       *string
	Description *string
	Type        *domain.AnswerType
	Points      *int
	Answer      *string
	Hints       []string
	Options     []string
	OrderIndex  *int
	ImageURL    *string
}

func (s *GameService) UpdateChallenge(ctx context.Context, teacherID, challengeID string, params UpdateChallengeParams) (domain.Challenge, error) {
	challenge, err := s.ownedChallenge(ctx, teacherID, challengeID)
	if err != nil {
		return domain.Challenge{}, err
	}
	if params.Title != nil {
		challenge.Title = *params.Title
	}
	if params.Description != nil {
		challenge.Description = *params.Description
	}
	if params.Type != nil {
		challenge.Type = *params.Type
	}
	if params.Points != nil {
		challenge.Points = *params.Points
	}
	if params.Answer != nil {
		challenge.Answer = domain.NormalizeAnswer(*params.Answer)
	}
	if params.Hints != nil {
		challenge.Hints = params.Hints
	}
	if params.Options != nil {
		challenge.Options = params.Options
	}
	if params.OrderIndex != nil {
		challenge.OrderIndex = *params.OrderIndex
	}
	if params.ImageURL != nil {
		challenge.ImageURL = params.ImageURL
	}
	challenge.UpdatedAt = s.now()
	if err := s.challenges.UpdateChallenge(ctx, &challenge); err != nil {
		return domain.Challenge{}, fmt.Errorf("update challenge: %w", err)
	}
	s.cache.Invalidate(ctx, challenge.GameID)
	return challenge, nil
}

func (s *GameService) DeleteChallenge(ctx context.Context, teacherID, challengeID string) error {
	challenge, err := s.ownedChallenge(ctx, teacherID, challengeID)
	if err != nil {
		return err
	}
	if err := s.challenges.DeleteChallenge(ctx, challenge.ID); err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	s.cache.Invalidate(ctx, challenge.GameID)
	return nil
}

func (s *GameService) ownedGame(ctx context.Context, teacherID, gameID string) (domain.Game, error) {
	game, err := s.games.GameByID(ctx, gameID)
	if err != nil || game.TeacherID != teacherID {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return game, nil
}

func (s *GameService) ownedChallenge(ctx context.Context, teacherID, challengeID string) (domain.Challenge, error) {
	challenge, err := s.challenges.ChallengeByID(ctx, challengeID)
	if err != nil {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	if _, err := s.ownedGame(ctx, teacherID, challenge.GameID); err != nil {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	return challenge, nil
}
