package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"classctf-service/internal/app"
	"classctf-service/internal/domain"
)

// Store implements the app store interfaces on top of bun/Postgres.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateGame(ctx context.Context, game *domain.Game) error {
	if _, err := s.db.NewInsert().Model(game).Exec(ctx); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (s *Store) GameByID(ctx context.Context, id string) (domain.Game, error) {
	var game domain.Game
	err := s.db.NewSelect().Model(&game).Where("g.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.Game{}, fmt.Errorf("select game: %w", err)
	}
	return game, nil
}

func (s *Store) GameByCode(ctx context.Context, code string) (domain.Game, error) {
	var game domain.Game
	err := s.db.NewSelect().Model(&game).Where("g.game_code = ?", code).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Game{}, domain.ErrGameNotFound
	}
	if err != nil {
		return domain.Game{}, fmt.Errorf("select game by code: %w", err)
	}
	return game, nil
}

func (s *Store) GamesByTeacher(ctx context.Context, teacherID string) ([]domain.Game, error) {
	var games []domain.Game
	err := s.db.NewSelect().Model(&games).
		Where("g.teacher_id = ?", teacherID).
		Order("g.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}
	return games, nil
}

func (s *Store) UpdateGame(ctx context.Context, game *domain.Game) error {
	res, err := s.db.NewUpdate().Model(game).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

// DeleteGame relies on ON DELETE CASCADE for challenges, teams,
// submissions and reflections.
func (s *Store) DeleteGame(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*domain.Game)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

func (s *Store) CreateChallenge(ctx context.Context, challenge *domain.Challenge) error {
	if _, err := s.db.NewInsert().Model(challenge).Exec(ctx); err != nil {
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

func (s *Store) CreateChallenges(ctx context.Context, challenges []domain.Challenge) error {
	if len(challenges) == 0 {
		return nil
	}
	if _, err := s.db.NewInsert().Model(&challenges).Exec(ctx); err != nil {
		return fmt.Errorf("bulk insert challenges: %w", err)
	}
	return nil
}

func (s *Store) ChallengeByID(ctx context.Context, id string) (domain.Challenge, error) {
	var challenge domain.Challenge
	err := s.db.NewSelect().Model(&challenge).Where("c.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("select challenge: %w", err)
	}
	return challenge, nil
}

func (s *Store) ChallengesByGame(ctx context.Context, gameID string) ([]domain.Challenge, error) {
	var challenges []domain.Challenge
	err := s.db.NewSelect().Model(&challenges).
		Where("c.game_id = ?", gameID).
		Order("c.order_index ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select challenges: %w", err)
	}
	return challenges, nil
}

func (s *Store) CountChallenges(ctx context.Context, gameID string) (int, error) {
	count, err := s.db.NewSelect().Model((*domain.Challenge)(nil)).
		Where("c.game_id = ?", gameID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count challenges: %w", err)
	}
	return count, nil
}

func (s *Store) UpdateChallenge(ctx context.Context, challenge *domain.Challenge) error {
	res, err := s.db.NewUpdate().Model(challenge).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update challenge: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrChallengeNotFound
	}
	return nil
}

func (s *Store) DeleteChallenge(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*domain.Challenge)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrChallengeNotFound
	}
	return nil
}

func (s *Store) CreateTeam(ctx context.Context, team *domain.Team) error {
	if _, err := s.db.NewInsert().Model(team).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTeamNameTaken
		}
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

func (s *Store) TeamByToken(ctx context.Context, token string) (domain.Team, error) {
	var team domain.Team
	err := s.db.NewSelect().Model(&team).Where("t.session_token = ?", token).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Team{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Team{}, fmt.Errorf("select team by token: %w", err)
	}
	return team, nil
}

func (s *Store) TeamNameExists(ctx context.Context, gameID, name string) (bool, error) {
	exists, err := s.db.NewSelect().Model((*domain.Team)(nil)).
		Where("t.game_id = ? AND t.name = ?", gameID, name).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check team name: %w", err)
	}
	return exists, nil
}

func (s *Store) TeamsByGame(ctx context.Context, gameID string) ([]domain.Team, error) {
	var teams []domain.Team
	err := s.db.NewSelect().Model(&teams).
		Where("t.game_id = ?", gameID).
		Order("t.total_points DESC").
		Order("t.joined_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}
	return teams, nil
}

func (s *Store) CountTeams(ctx context.Context, gameID string) (int, error) {
	count, err := s.db.NewSelect().Model((*domain.Team)(nil)).
		Where("t.game_id = ?", gameID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count teams: %w", err)
	}
	return count, nil
}

// AddSolve credits a correct submission as a single atomic UPDATE so two
// concurrent solves can never lose an increment.
func (s *Store) AddSolve(ctx context.Context, teamID string, points int) (domain.Team, error) {
	var team domain.Team
	err := s.db.NewUpdate().Model(&team).
		Set("total_points = total_points + ?", points).
		Set("solved_count = solved_count + 1").
		Set("updated_at = now()").
		Where("id = ?", teamID).
		Returning("*").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Team{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Team{}, fmt.Errorf("credit team: %w", err)
	}
	return team, nil
}

func (s *Store) CreateSubmission(ctx context.Context, submission *domain.Submission) error {
	if _, err := s.db.NewInsert().Model(submission).Exec(ctx); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *Store) HasCorrectSubmission(ctx context.Context, teamID, challengeID string) (bool, error) {
	exists, err := s.db.NewSelect().Model((*domain.Submission)(nil)).
		Where("s.team_id = ? AND s.challenge_id = ? AND s.is_correct", teamID, challengeID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check prior solve: %w", err)
	}
	return exists, nil
}

func (s *Store) CreateReflection(ctx context.Context, reflection *domain.Reflection) error {
	if _, err := s.db.NewInsert().Model(reflection).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrReflectionExists
		}
		return fmt.Errorf("insert reflection: %w", err)
	}
	return nil
}

func (s *Store) ReflectionsByGame(ctx context.Context, gameID string) ([]domain.Reflection, error) {
	var reflections []domain.Reflection
	err := s.db.NewSelect().Model(&reflections).
		Where("r.game_id = ?", gameID).
		Order("r.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select reflections: %w", err)
	}
	return reflections, nil
}

func (s *Store) CreateItem(ctx context.Context, item *domain.LibraryItem) error {
	if _, err := s.db.NewInsert().Model(item).Exec(ctx); err != nil {
		return fmt.Errorf("insert library item: %w", err)
	}
	return nil
}

func (s *Store) ItemByID(ctx context.Context, id string) (domain.LibraryItem, error) {
	var item domain.LibraryItem
	err := s.db.NewSelect().Model(&item).Where("li.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.LibraryItem{}, domain.ErrLibraryItemNotFound
	}
	if err != nil {
		return domain.LibraryItem{}, fmt.Errorf("select library item: %w", err)
	}
	return item, nil
}

func (s *Store) Items(ctx context.Context, filter app.LibraryFilter) ([]domain.LibraryItem, error) {
	var items []domain.LibraryItem
	q := s.db.NewSelect().Model(&items).Order("li.created_at DESC")
	if filter.Status != "" {
		q = q.Where("li.status = ?", filter.Status)
	}
	if filter.Subject != "" {
		q = q.Where("li.subject = ?", filter.Subject)
	}
	if filter.GradeLevel != "" {
		q = q.Where("li.grade_level = ?", filter.GradeLevel)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("li.title ILIKE ? OR li.description ILIKE ?", pattern, pattern)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select library items: %w", err)
	}
	return items, nil
}

func (s *Store) UpdateItem(ctx context.Context, item *domain.LibraryItem) error {
	res, err := s.db.NewUpdate().Model(item).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update library item: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrLibraryItemNotFound
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*domain.LibraryItem)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete library item: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrLibraryItemNotFound
	}
	return nil
}

func (s *Store) IncrementCloneCount(ctx context.Context, id string) error {
	_, err := s.db.NewUpdate().Model((*domain.LibraryItem)(nil)).
		Set("clone_count = clone_count + 1").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("increment clone count: %w", err)
	}
	return nil
}

// CreateProfile inserts a profile row, typically mirrored from the auth
// provider on first sign-in.
func (s *Store) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	if _, err := s.db.NewInsert().Model(profile).Exec(ctx); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *Store) ProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	var profile domain.Profile
	err := s.db.NewSelect().Model(&profile).Where("p.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("select profile: %w", err)
	}
	return profile, nil
}

func (s *Store) ProfilesByIDs(ctx context.Context, ids []string) (map[string]domain.Profile, error) {
	result := make(map[string]domain.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var profiles []domain.Profile
	err := s.db.NewSelect().Model(&profiles).Where("p.id IN (?)", bun.In(ids)).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select profiles: %w", err)
	}
	for _, profile := range profiles {
		result[profile.ID] = profile
	}
	return result, nil
}

func (s *Store) Profiles(ctx context.Context) ([]domain.Profile, error) {
	var profiles []domain.Profile
	err := s.db.NewSelect().Model(&profiles).Order("p.created_at DESC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select profiles: %w", err)
	}
	return profiles, nil
}

func (s *Store) UpdateRole(ctx context.Context, userID string, role domain.Role) error {
	res, err := s.db.NewUpdate().Model((*domain.Profile)(nil)).
		Set("role = ?", role).
		Set("updated_at = now()").
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
