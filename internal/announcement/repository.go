// Package announcement keeps the append-only notice log of each station.
package announcement

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railmadad/portal/internal/repo"
)

// Repository stores announcements in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append inserts a notice.
func (r *Repository) Append(ctx context.Context, a repo.Announcement) (repo.Announcement, error) {
	const query = `
        INSERT INTO announcements (station, team, message, created_by)
        VALUES ($1, $2, $3, $4)
        RETURNING id, station, team, message, created_by, created_at`

	var out repo.Announcement
	err := r.pool.QueryRow(ctx, query, a.Station, a.Team, a.Message, a.CreatedBy).
		Scan(&out.ID, &out.Station, &out.Team, &out.Message, &out.CreatedBy, &out.CreatedAt)
	return out, err
}

// ListByStation returns a station's notices, newest first.
func (r *Repository) ListByStation(ctx context.Context, station string, limit int) ([]repo.Announcement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
        SELECT id, station, team, message, created_by, created_at
        FROM announcements WHERE lower(station) = lower($1)
        ORDER BY created_at DESC, id DESC LIMIT $2`, station, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []repo.Announcement{}
	for rows.Next() {
		var a repo.Announcement
		if err := rows.Scan(&a.ID, &a.Station, &a.Team, &a.Message, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
