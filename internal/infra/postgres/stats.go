package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"classctf-service/internal/domain"
)

// StatsReader answers the admin dashboard's aggregate query directly via
// pgx, keeping the heavy counts off the ORM path.
type StatsReader struct {
	pool *pgxpool.Pool
}

func NewStatsReader(pool *pgxpool.Pool) *StatsReader {
	return &StatsReader{pool: pool}
}

func (r *StatsReader) PlatformStats(ctx context.Context) (domain.PlatformStats, error) {
	const query = `
SELECT
  (SELECT count(*) FROM profiles),
  (SELECT count(*) FROM games),
  (SELECT count(*) FROM games WHERE status = 'active'),
  (SELECT count(*) FROM teams),
  (SELECT count(*) FROM submissions),
  (SELECT count(*) FROM library_items)`

	var stats domain.PlatformStats
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalUsers,
		&stats.TotalGames,
		&stats.ActiveGames,
		&stats.TotalTeams,
		&stats.TotalSubmissions,
		&stats.LibraryItems,
	)
	if err != nil {
		return domain.PlatformStats{}, fmt.Errorf("platform stats: %w", err)
	}
	return stats, nil
}
