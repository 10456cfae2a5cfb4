package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// GameStatus tracks the teacher-driven lifecycle of a game.
type GameStatus string

const (
	GameStatusDraft    GameStatus = "draft"
	GameStatusActive   GameStatus = "active"
	GameStatusPaused   GameStatus = "paused"
	GameStatusFinished GameStatus = "finished"
)

// AnswerType selects how a challenge is presented to players.
type AnswerType string

const (
	AnswerTypeText           AnswerType = "text"
	AnswerTypeNumber         AnswerType = "number"
	AnswerTypeMultipleChoice AnswerType = "multiple_choice"
)

// ReviewStatus is the moderation state of a library item.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending_review"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// GameSettings is stored as a JSONB blob alongside the game row.
type GameSettings struct {
	MaxTeams          int  `json:"max_teams"`
	TimeLimitMinutes  *int `json:"time_limit_minutes"`
	ShowLeaderboard   bool `json:"show_leaderboard"`
	ShuffleChallenges bool `json:"shuffle_challenges"`
}

// DefaultGameSettings mirrors the defaults applied when a teacher creates
// a game without explicit settings.
func DefaultGameSettings() GameSettings {
	return GameSettings{
		MaxTeams:        50,
		ShowLeaderboard: true,
	}
}

// Game is a quiz owned by a single teacher, joined by teams via GameCode.
type Game struct {
	bun.BaseModel `bun:"table:games,alias:g" json:"-"`

	ID          string       `bun:"id,pk" json:"id"`
	TeacherID   string       `bun:"teacher_id,notnull" json:"teacher_id"`
	Title       string       `bun:"title,notnull" json:"title"`
	Description string       `bun:"description" json:"description"`
	GameCode    string       `bun:"game_code,notnull" json:"game_code"`
	Status      GameStatus   `bun:"status,notnull" json:"status"`
	Settings    GameSettings `bun:"settings,type:jsonb" json:"settings"`
	CreatedAt   time.Time    `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time    `bun:"updated_at,notnull" json:"updated_at"`
}

// Challenge belongs to a game. Answer holds the normalized form only and
// is never serialized to clients.
type Challenge struct {
	bun.BaseModel `bun:"table:challenges,alias:c" json:"-"`

	ID          string     `bun:"id,pk" json:"id"`
	GameID      string     `bun:"game_id,notnull" json:"game_id"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description string     `bun:"description" json:"description"`
	Type        AnswerType `bun:"type,notnull" json:"type"`
	Points      int        `bun:"points,notnull" json:"points"`
	Answer      string     `bun:"answer" json:"-"`
	Hints       []string   `bun:"hints,type:jsonb" json:"hints"`
	Options     []string   `bun:"options,type:jsonb" json:"options,omitempty"`
	OrderIndex  int        `bun:"order_index,notnull" json:"order_index"`
	ImageURL    *string    `bun:"image_url" json:"image_url,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}

// Team is created at join time. SessionToken is the sole credential for
// player-side actions; it is returned once, on join.
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t" json:"-"`

	ID           string    `bun:"id,pk" json:"id"`
	GameID       string    `bun:"game_id,notnull" json:"game_id"`
	Name         string    `bun:"name,notnull" json:"name"`
	SessionToken string    `bun:"session_token,notnull" json:"-"`
	TotalPoints  int       `bun:"total_points,notnull" json:"total_points"`
	SolvedCount  int       `bun:"solved_count,notnull" json:"solved_count"`
	JoinedAt     time.Time `bun:"joined_at,notnull" json:"joined_at"`
	UpdatedAt    time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// Submission is an append-only attempt log row, immutable once written.
type Submission struct {
	bun.BaseModel `bun:"table:submissions,alias:s" json:"-"`

	ID            string    `bun:"id,pk" json:"id"`
	TeamID        string    `bun:"team_id,notnull" json:"team_id"`
	ChallengeID   string    `bun:"challenge_id,notnull" json:"challenge_id"`
	Answer        string    `bun:"answer,notnull" json:"answer"`
	IsCorrect     bool      `bun:"is_correct,notnull" json:"is_correct"`
	PointsAwarded int       `bun:"points_awarded,notnull" json:"points_awarded"`
	AttemptedAt   time.Time `bun:"attempted_at,notnull" json:"attempted_at"`
}

// Reflection is a post-game write-up, at most one per team.
type Reflection struct {
	bun.BaseModel `bun:"table:reflections,alias:r" json:"-"`

	ID                 string    `bun:"id,pk" json:"id"`
	GameID             string    `bun:"game_id,notnull" json:"game_id"`
	TeamID             string    `bun:"team_id,notnull" json:"team_id"`
	HardestChallengeID *string   `bun:"hardest_challenge_id" json:"hardest_challenge_id"`
	ImprovementText    string    `bun:"improvement_text,notnull" json:"improvement_text"`
	LikedText          *string   `bun:"liked_text" json:"liked_text"`
	CreatedAt          time.Time `bun:"created_at,notnull" json:"created_at"`
}

// ChallengeSnapshot is the answer-stripped copy of a challenge embedded in
// a library item. There is deliberately no answer field.
type ChallengeSnapshot struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Type        AnswerType `json:"type"`
	Points      int        `json:"points"`
	Hints       []string   `json:"hints"`
	Options     []string   `json:"options,omitempty"`
	OrderIndex  int        `json:"order_index"`
	ImageURL    *string    `json:"image_url,omitempty"`
}

// LibraryItem is a moderatable template snapshot of a game.
type LibraryItem struct {
	bun.BaseModel `bun:"table:library_items,alias:li" json:"-"`

	ID           string              `bun:"id,pk" json:"id"`
	SourceGameID string              `bun:"source_game_id,notnull" json:"source_game_id"`
	Title        string              `bun:"title,notnull" json:"title"`
	Description  string              `bun:"description" json:"description"`
	Subject      string              `bun:"subject" json:"subject"`
	GradeLevel   string              `bun:"grade_level" json:"grade_level"`
	Tags         []string            `bun:"tags,type:jsonb" json:"tags"`
	Challenges   []ChallengeSnapshot `bun:"challenge_data,type:jsonb" json:"challenge_data"`
	Settings     GameSettings        `bun:"settings,type:jsonb" json:"settings"`
	PublishedBy  string              `bun:"published_by,notnull" json:"published_by"`
	Status       ReviewStatus        `bun:"status,notnull" json:"status"`
	ReviewNotes  *string             `bun:"review_notes" json:"review_notes"`
	ReviewedBy   *string             `bun:"reviewed_by" json:"reviewed_by"`
	ReviewedAt   *time.Time          `bun:"reviewed_at" json:"reviewed_at"`
	CloneCount   int                 `bun:"clone_count,notnull" json:"clone_count"`
	CreatedAt    time.Time           `bun:"created_at,notnull" json:"created_at"`
}

// Profile is the teacher-side user record backing role checks.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p" json:"-"`

	ID        string    `bun:"id,pk" json:"id"`
	Email     string    `bun:"email,notnull" json:"email"`
	FullName  string    `bun:"full_name" json:"full_name"`
	School    string    `bun:"school" json:"school"`
	Role      Role      `bun:"role,notnull" json:"role"`
	AvatarURL *string   `bun:"avatar_url" json:"avatar_url"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// LeaderboardEntry is a snapshot-friendly view of a team.
type LeaderboardEntry struct {
	TeamID      string `json:"team_id"`
	Name        string `json:"name"`
	TotalPoints int    `json:"total_points"`
	SolvedCount int    `json:"solved_count"`
}

// Leaderboard captures the ordered scoreboard for a game.
type Leaderboard struct {
	GameID    string             `json:"game_id"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// SubmissionResult summarizes the outcome of an answer submission.
type SubmissionResult struct {
	IsCorrect     bool   `json:"is_correct"`
	PointsAwarded int    `json:"points_awarded"`
	Message       string `json:"message"`
	TotalPoints   int    `json:"total_points"`
	AlreadySolved bool   `json:"already_solved,omitempty"`
}

// PlatformStats is the aggregate snapshot served to admins.
type PlatformStats struct {
	TotalUsers       int `json:"total_users"`
	TotalGames       int `json:"total_games"`
	ActiveGames      int `json:"active_games"`
	TotalTeams       int `json:"total_teams"`
	TotalSubmissions int `json:"total_submissions"`
	LibraryItems     int `json:"library_items"`
}
