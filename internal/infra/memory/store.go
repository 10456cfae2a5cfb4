package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"classctf-service/internal/app"
	"classctf-service/internal/domain"
)

// Store is an in-memory implementation of every app store interface. It
// backs the no-database dev mode and the unit tests. All methods copy
// values in and out so callers never share row memory.
type Store struct {
	mu          sync.RWMutex
	games       map[string]domain.Game
	challenges  map[string]domain.Challenge
	teams       map[string]domain.Team
	submissions map[string]domain.Submission
	reflections map[string]domain.Reflection
	library     map[string]domain.LibraryItem
	profiles    map[string]domain.Profile
}

func NewStore() *Store {
	return &Store{
		games:       make(map[string]domain.Game),
		challenges:  make(map[string]domain.Challenge),
		teams:       make(map[string]domain.Team),
		submissions: make(map[string]domain.Submission),
		reflections: make(map[string]domain.Reflection),
		library:     make(map[string]domain.LibraryItem),
		profiles:    make(map[string]domain.Profile),
	}
}

func (s *Store) CreateGame(_ context.Context, game *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = *game
	return nil
}

func (s *Store) GameByID(_ context.Context, id string) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return game, nil
}

func (s *Store) GameByCode(_ context.Context, code string) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, game := range s.games {
		if game.GameCode == code {
			return game, nil
		}
	}
	return domain.Game{}, domain.ErrGameNotFound
}

func (s *Store) GamesByTeacher(_ context.Context, teacherID string) ([]domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var games []domain.Game
	for _, game := range s.games {
		if game.TeacherID == teacherID {
			games = append(games, game)
		}
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})
	return games, nil
}

func (s *Store) UpdateGame(_ context.Context, game *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.ID]; !ok {
		return domain.ErrGameNotFound
	}
	s.games[game.ID] = *game
	return nil
}

// DeleteGame cascades to challenges, teams, submissions and reflections,
// matching the database's foreign-key cascade.
func (s *Store) DeleteGame(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return domain.ErrGameNotFound
	}
	delete(s.games, id)
	teamIDs := make(map[string]bool)
	for tid, team := range s.teams {
		if team.GameID == id {
			teamIDs[tid] = true
			delete(s.teams, tid)
		}
	}
	for cid, challenge := range s.challenges {
		if challenge.GameID == id {
			delete(s.challenges, cid)
		}
	}
	for sid, sub := range s.submissions {
		if teamIDs[sub.TeamID] {
			delete(s.submissions, sid)
		}
	}
	for rid, reflection := range s.reflections {
		if reflection.GameID == id {
			delete(s.reflections, rid)
		}
	}
	return nil
}

func (s *Store) CreateChallenge(_ context.Context, challenge *domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.ID] = *challenge
	return nil
}

func (s *Store) CreateChallenges(_ context.Context, challenges []domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, challenge := range challenges {
		s.challenges[challenge.ID] = challenge
	}
	return nil
}

func (s *Store) ChallengeByID(_ context.Context, id string) (domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	challenge, ok := s.challenges[id]
	if !ok {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	return challenge, nil
}

func (s *Store) ChallengesByGame(_ context.Context, gameID string) ([]domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var challenges []domain.Challenge
	for _, challenge := range s.challenges {
		if challenge.GameID == gameID {
			challenges = append(challenges, challenge)
		}
	}
	sort.Slice(challenges, func(i, j int) bool {
		return challenges[i].OrderIndex < challenges[j].OrderIndex
	})
	return challenges, nil
}

func (s *Store) CountChallenges(ctx context.Context, gameID string) (int, error) {
	challenges, err := s.ChallengesByGame(ctx, gameID)
	if err != nil {
		return 0, err
	}
	return len(challenges), nil
}

func (s *Store) UpdateChallenge(_ context.Context, challenge *domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.challenges[challenge.ID]; !ok {
		return domain.ErrChallengeNotFound
	}
	s.challenges[challenge.ID] = *challenge
	return nil
}

func (s *Store) DeleteChallenge(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.challenges[id]; !ok {
		return domain.ErrChallengeNotFound
	}
	delete(s.challenges, id)
	return nil
}

func (s *Store) CreateTeam(_ context.Context, team *domain.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[team.ID] = *team
	return nil
}

func (s *Store) TeamByToken(_ context.Context, token string) (domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, team := range s.teams {
		if team.SessionToken == token {
			return team, nil
		}
	}
	return domain.Team{}, domain.ErrSessionNotFound
}

func (s *Store) TeamNameExists(_ context.Context, gameID, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, team := range s.teams {
		if team.GameID == gameID && team.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) TeamsByGame(_ context.Context, gameID string) ([]domain.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var teams []domain.Team
	for _, team := range s.teams {
		if team.GameID == gameID {
			teams = append(teams, team)
		}
	}
	sort.Slice(teams, func(i, j int) bool {
		return teams[i].JoinedAt.Before(teams[j].JoinedAt)
	})
	return teams, nil
}

func (s *Store) CountTeams(ctx context.Context, gameID string) (int, error) {
	teams, err := s.TeamsByGame(ctx, gameID)
	if err != nil {
		return 0, err
	}
	return len(teams), nil
}

// AddSolve increments score and solved count under the store lock, the
// in-memory equivalent of the SQL atomic increment.
func (s *Store) AddSolve(_ context.Context, teamID string, points int) (domain.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[teamID]
	if !ok {
		return domain.Team{}, domain.ErrSessionNotFound
	}
	team.TotalPoints += points
	team.SolvedCount++
	s.teams[teamID] = team
	return team, nil
}

func (s *Store) CreateSubmission(_ context.Context, submission *domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions[submission.ID] = *submission
	return nil
}

func (s *Store) HasCorrectSubmission(_ context.Context, teamID, challengeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.submissions {
		if sub.TeamID == teamID && sub.ChallengeID == challengeID && sub.IsCorrect {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateReflection(_ context.Context, reflection *domain.Reflection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reflections {
		if existing.TeamID == reflection.TeamID {
			return domain.ErrReflectionExists
		}
	}
	s.reflections[reflection.ID] = *reflection
	return nil
}

func (s *Store) ReflectionsByGame(_ context.Context, gameID string) ([]domain.Reflection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var reflections []domain.Reflection
	for _, reflection := range s.reflections {
		if reflection.GameID == gameID {
			reflections = append(reflections, reflection)
		}
	}
	sort.Slice(reflections, func(i, j int) bool {
		return reflections[i].CreatedAt.Before(reflections[j].CreatedAt)
	})
	return reflections, nil
}

func (s *Store) CreateItem(_ context.Context, item *domain.LibraryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.library[item.ID] = *item
	return nil
}

func (s *Store) ItemByID(_ context.Context, id string) (domain.LibraryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.library[id]
	if !ok {
		return domain.LibraryItem{}, domain.ErrLibraryItemNotFound
	}
	return item, nil
}

func (s *Store) Items(_ context.Context, filter app.LibraryFilter) ([]domain.LibraryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []domain.LibraryItem
	for _, item := range s.library {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.Subject != "" && item.Subject != filter.Subject {
			continue
		}
		if filter.GradeLevel != "" && item.GradeLevel != filter.GradeLevel {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(item.Title), needle) &&
				!strings.Contains(strings.ToLower(item.Description), needle) {
				continue
			}
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (s *Store) UpdateItem(_ context.Context, item *domain.LibraryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.library[item.ID]; !ok {
		return domain.ErrLibraryItemNotFound
	}
	s.library[item.ID] = *item
	return nil
}

func (s *Store) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.library[id]; !ok {
		return domain.ErrLibraryItemNotFound
	}
	delete(s.library, id)
	return nil
}

func (s *Store) IncrementCloneCount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.library[id]
	if !ok {
		return domain.ErrLibraryItemNotFound
	}
	item.CloneCount++
	s.library[id] = item
	return nil
}

func (s *Store) ProfileByID(_ context.Context, id string) (domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[id]
	if !ok {
		return domain.Profile{}, domain.ErrUserNotFound
	}
	return profile, nil
}

func (s *Store) ProfilesByIDs(_ context.Context, ids []string) (map[string]domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles := make(map[string]domain.Profile, len(ids))
	for _, id := range ids {
		if profile, ok := s.profiles[id]; ok {
			profiles[id] = profile
		}
	}
	return profiles, nil
}

func (s *Store) Profiles(_ context.Context) ([]domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles := make([]domain.Profile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.After(profiles[j].CreatedAt)
	})
	return profiles, nil
}

// PutProfile seeds a profile row; used by wiring and tests.
func (s *Store) PutProfile(profile domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = profile
}

func (s *Store) UpdateRole(_ context.Context, userID string, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	profile.Role = role
	s.profiles[userID] = profile
	return nil
}

// PlatformStats computes the aggregate counters by scanning the maps; the
// in-memory stand-in for the SQL stats query.
func (s *Store) PlatformStats(_ context.Context) (domain.PlatformStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.PlatformStats{
		TotalUsers:       len(s.profiles),
		TotalGames:       len(s.games),
		TotalTeams:       len(s.teams),
		TotalSubmissions: len(s.submissions),
		LibraryItems:     len(s.library),
	}
	for _, game := range s.games {
		if game.Status == domain.GameStatusActive {
			stats.ActiveGames++
		}
	}
	return stats, nil
}
