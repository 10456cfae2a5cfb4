package app

import (
	"context"

	"classctf-service/internal/domain"
)

// GameStore persists games.
type GameStore interface {
	CreateGame(ctx context.Context, game *domain.Game) error
	GameByID(ctx context.Context, id string) (domain.Game, error)
	GameByCode(ctx context.Context, code string) (domain.Game, error)
	GamesByTeacher(ctx context.Context, teacherID string) ([]domain.Game, error)
	UpdateGame(ctx context.Context, game *domain.Game) error
	DeleteGame(ctx context.Context, id string) error
}

// ChallengeStore persists challenges.
type ChallengeStore interface {
	CreateChallenge(ctx context.Context, challenge *domain.Challenge) error
	CreateChallenges(ctx context.Context, challenges []domain.Challenge) error
	ChallengeByID(ctx context.Context, id string) (domain.Challenge, error)
	ChallengesByGame(ctx context.Context, gameID string) ([]domain.Challenge, error)
	CountChallenges(ctx context.Context, gameID string) (int, error)
	UpdateChallenge(ctx context.Context, challenge *domain.Challenge) error
	DeleteChallenge(ctx context.Context, id string) error
}

// TeamStore persists teams. AddSolve must be an atomic increment of both
// total points and solved count, returning the updated row.
type TeamStore interface {
	CreateTeam(ctx context.Context, team *domain.Team) error
	TeamByToken(ctx context.Context, token string) (domain.Team, error)
	TeamNameExists(ctx context.Context, gameID, name string) (bool, error)
	TeamsByGame(ctx context.Context, gameID string) ([]domain.Team, error)
	CountTeams(ctx context.Context, gameID string) (int, error)
	AddSolve(ctx context.Context, teamID string, points int) (domain.Team, error)
}

// SubmissionStore appends to the immutable attempt log.
type SubmissionStore interface {
	CreateSubmission(ctx context.Context, submission *domain.Submission) error
	HasCorrectSubmission(ctx context.Context, teamID, challengeID string) (bool, error)
}

// ReflectionStore persists post-game reflections, one per team.
type ReflectionStore interface {
	CreateReflection(ctx context.Context, reflection *domain.Reflection) error
	ReflectionsByGame(ctx context.Context, gameID string) ([]domain.Reflection, error)
}

// LibraryFilter narrows library listings.
type LibraryFilter struct {
	Status     domain.ReviewStatus
	Subject    string
	GradeLevel string
	Search     string
	Limit      int
}

// LibraryStore persists template library items.
type LibraryStore interface {
	CreateItem(ctx context.Context, item *domain.LibraryItem) error
	ItemByID(ctx context.Context, id string) (domain.LibraryItem, error)
	Items(ctx context.Context, filter LibraryFilter) ([]domain.LibraryItem, error)
	UpdateItem(ctx context.Context, item *domain.LibraryItem) error
	DeleteItem(ctx context.Context, id string) error
	IncrementCloneCount(ctx context.Context, id string) error
}

// ProfileStore reads and mutates user profiles.
type ProfileStore interface {
	ProfileByID(ctx context.Context, id string) (domain.Profile, error)
	ProfilesByIDs(ctx context.Context, ids []string) (map[string]domain.Profile, error)
	Profiles(ctx context.Context) ([]domain.Profile, error)
	UpdateRole(ctx context.Context, userID string, role domain.Role) error
}

// RateLimiter guards the submission path. Allow reports whether a new
// attempt may proceed and, if so, records it. The check happens before
// the record, so the Nth attempt within the window passes and the N+1th
// is blocked.
type RateLimiter interface {
	Allow(ctx context.Context, teamID string) (bool, error)
}

// ChallengeCache serves the player-facing challenge list for a game,
// collapsing concurrent loads. Invalidate is called on authoring writes.
type ChallengeCache interface {
	ChallengesByGame(ctx context.Context, gameID string) ([]domain.Challenge, error)
	Invalidate(ctx context.Context, gameID string)
}

// StatsReader computes aggregate platform statistics.
type StatsReader interface {
	PlatformStats(ctx context.Context) (domain.PlatformStats, error)
}

// Feed carries leaderboard snapshots between service instances.
type Feed interface {
	Publish(ctx context.Context, lb domain.Leaderboard) error
	Subscribe(gameID string) (<-chan domain.Leaderboard, func(), error)
}
