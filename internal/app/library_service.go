package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"classctf-service/internal/domain"
)

// LibraryService manages the shared template library: publishing
// answer-stripped snapshots, moderating them, and cloning them back into
// draft games.
type LibraryService struct {
	library    LibraryStore
	games      GameStore
	challenges ChallengeStore
	profiles   ProfileStore
	log        *logrus.Logger
	now        func() time.Time
}

func NewLibraryService(library LibraryStore, games GameStore, challenges ChallengeStore, profiles ProfileStore, log *logrus.Logger) *LibraryService {
	return &LibraryService{
		library:    library,
		games:      games,
		challenges: challenges,
		profiles:   profiles,
		log:        log,
		now:        time.Now,
	}
}

// LibraryItemView enriches an item with publisher info for listings.
type LibraryItemView struct {
	domain.LibraryItem
	PublisherName  string `json:"publisher_name"`
	PublisherEmail string `json:"publisher_email,omitempty"`
	ChallengeCount int    `json:"challenge_count"`
}

// PublishParams carries validated input for publishing a game snapshot.
type PublishParams struct {
	GameID      string
	Title       string
	Description string
	Subject     string
	GradeLevel  string
	Tags        []string
}

// Publish snapshots an owned game's challenges, without answers, into a
// pending library item.
func (s *LibraryService) Publish(ctx context.Context, teacherID string, params PublishParams) (domain.LibraryItem, error) {
	game, err := s.games.GameByID(ctx, params.GameID)
	if err != nil || game.TeacherID != teacherID {
		return domain.LibraryItem{}, domain.ErrGameNotFound
	}
	challenges, err := s.challenges.ChallengesByGame(ctx, game.ID)
	if err != nil {
		return domain.LibraryItem{}, fmt.Errorf("load challenges: %w", err)
	}
	if len(challenges) == 0 {
		return domain.LibraryItem{}, domain.ErrGameNeedsChallenge
	}

	sort.Slice(challenges, func(i, j int) bool {
		return challenges[i].OrderIndex < challenges[j].OrderIndex
	})
	snapshots := make([]domain.ChallengeSnapshot, 0, len(challenges))
	for _, c := range challenges {
		snapshots = append(snapshots, domain.ChallengeSnapshot{
			Title:       c.Title,
			Description: c.Description,
			Type:        c.Type,
			Points:      c.Points,
			Hints:       c.Hints,
			Options:     c.Options,
			OrderIndex:  c.OrderIndex,
			ImageURL:    c.ImageURL,
		})
	}

	description := params.Description
	if description == "" {
		description = game.Description
	}
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}
	item := domain.LibraryItem{
		ID:           uuid.NewString(),
		SourceGameID: game.ID,
		Title:        params.Title,
		Description:  description,
		Subject:      params.Subject,
		GradeLevel:   params.GradeLevel,
		Tags:         tags,
		Challenges:   snapshots,
		Settings:     game.Settings,
		PublishedBy:  teacherID,
		Status:       domain.ReviewStatusPending,
		CreatedAt:    s.now(),
	}
	if err := s.library.CreateItem(ctx, &item); err != nil {
		return domain.LibraryItem{}, fmt.Errorf("create library item: %w", err)
	}
	return item, nil
}

func (s *LibraryService) List(ctx context.Context, filter LibraryFilter) ([]LibraryItemView, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	items, err := s.library.Items(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.PublishedBy)
	}
	publishers, err := s.profiles.ProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	views := make([]LibraryItemView, 0, len(items))
	for _, item := range items {
		views = append(views, s.view(item, publishers))
	}
	return views, nil
}

func (s *LibraryService) Get(ctx context.Context, itemID string) (LibraryItemView, error) {
	item, err := s.library.ItemByID(ctx, itemID)
	if err != nil {
		return LibraryItemView{}, domain.ErrLibraryItemNotFound
	}
	publishers, err := s.profiles.ProfilesByIDs(ctx, []string{item.PublishedBy})
	if err != nil {
		return LibraryItemView{}, fmt.Errorf("load publisher: %w", err)
	}
	return s.view(item, publishers), nil
}

// Review approves or rejects a pending item. Role checks happen at the
// HTTP layer.
func (s *LibraryService) Review(ctx context.Context, reviewerID, itemID string, status domain.ReviewStatus, notes string) error {
	if status != domain.ReviewStatusApproved && status != domain.ReviewStatusRejected {
		return fmt.Errorf("%w: status must be approved or rejected", domain.ErrValidation)
	}
	item, err := s.library.ItemByID(ctx, itemID)
	if err != nil {
		return domain.ErrLibraryItemNotFound
	}
	now := s.now()
	item.Status = status
	item.ReviewedBy = &reviewerID
	item.ReviewedAt = &now
	if notes != "" {
		item.ReviewNotes = &notes
	} else {
		item.ReviewNotes = nil
	}
	if err := s.library.UpdateItem(ctx, &item); err != nil {
		return fmt.Errorf("update library item: %w", err)
	}
	return nil
}

func (s *LibraryService) Delete(ctx context.Context, itemID string) error {
	if _, err := s.library.ItemByID(ctx, itemID); err != nil {
		return domain.ErrLibraryItemNotFound
	}
	if err := s.library.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("delete library item: %w", err)
	}
	return nil
}

// Clone copies an approved item into a fresh draft game for the
// requesting teacher. Challenge answers come back empty; the teacher must
// fill them in before activating. If the challenge insert fails after the
// game row exists, the empty draft survives and the clone still counts as
// created. The clone counter update is best-effort.
func (s *LibraryService) Clone(ctx context.Context, teacherID, itemID string) (domain.Game, error) {
	item, err := s.library.ItemByID(ctx, itemID)
	if err != nil || item.Status != domain.ReviewStatusApproved {
		return domain.Game{}, domain.ErrLibraryItemNotFound
	}

	settings := item.Settings
	if settings.MaxTeams == 0 {
		settings = domain.DefaultGameSettings()
	}
	now := s.now()
	game := domain.Game{
		ID:          uuid.NewString(),
		TeacherID:   teacherID,
		Title:       item.Title + " (copy)",
		Description: item.Description,
		GameCode:    domain.NewGameCode(),
		Status:      domain.GameStatusDraft,
		Settings:    settings,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.games.CreateGame(ctx, &game); err != nil {
		return domain.Game{}, fmt.Errorf("create game: %w", err)
	}

	if len(item.Challenges) > 0 {
		challenges := make([]domain.Challenge, 0, len(item.Challenges))
		for _, snap := range item.Challenges {
			challengeType := snap.Type
			if challengeType == "" {
				challengeType = domain.AnswerTypeText
			}
			points := snap.Points
			if points == 0 {
				points = 100
			}
			hints := snap.Hints
			if hints == nil {
				hints = []string{}
			}
			challenges = append(challenges, domain.Challenge{
				ID:          uuid.NewString(),
				GameID:      game.ID,
				Title:       snap.Title,
				Description: snap.Description,
				Type:        challengeType,
				Points:      points,
				Answer:      "",
				Hints:       hints,
				Options:     snap.Options,
				OrderIndex:  snap.OrderIndex,
				ImageURL:    snap.ImageURL,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
		if err := s.challenges.CreateChallenges(ctx, challenges); err != nil {
			// The game row already exists; keep the empty draft and report success.
			s.log.WithError(err).WithFields(logrus.Fields{
				"game_id": game.ID,
				"item_id": item.ID,
			}).Error("challenge clone failed, returning empty draft")
		}
	}

	if err := s.library.IncrementCloneCount(ctx, item.ID); err != nil {
		s.log.WithError(err).WithField("item_id", item.ID).Warn("clone counter increment failed")
	}
	return game, nil
}

func (s *LibraryService) view(item domain.LibraryItem, publishers map[string]domain.Profile) LibraryItemView {
	view := LibraryItemView{
		LibraryItem:    item,
		PublisherName:  "Unknown",
		ChallengeCount: len(item.Challenges),
	}
	if p, ok := publishers[item.PublishedBy]; ok {
		if p.FullName != "" {
			view.PublisherName = p.FullName
		} else {
			view.PublisherName = p.Email
		}
		view.PublisherEmail = p.Email
	}
	return view
}
