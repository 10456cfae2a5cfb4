package app

import (
	"context"
	"fmt"

	"classctf-service/internal/domain"
)

// AdminService serves the moderation dashboard: user management and
// platform statistics. Role gating happens at the HTTP layer; the
// self-demotion block lives here because it needs both actor and target.
type AdminService struct {
	profiles ProfileStore
	stats    StatsReader
}

func NewAdminService(profiles ProfileStore, stats StatsReader) *AdminService {
	return &AdminService{profiles: profiles, stats: stats}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.Profile, error) {
	users, err := s.profiles.Profiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ChangeRole updates a user's role. Changing one's own role is rejected.
func (s *AdminService) ChangeRole(ctx context.Context, actorID, targetID string, role domain.Role) error {
	if actorID == targetID {
		return domain.ErrSelfRoleChange
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	if _, err := s.profiles.ProfileByID(ctx, targetID); err != nil {
		return domain.ErrUserNotFound
	}
	if err := s.profiles.UpdateRole(ctx, targetID, role); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

func (s *AdminService) PlatformStats(ctx context.Context) (domain.PlatformStats, error) {
	stats, err := s.stats.PlatformStats(ctx)
	if err != nil {
		return domain.PlatformStats{}, fmt.Errorf("platform stats: %w", err)
	}
	return stats, nil
}
