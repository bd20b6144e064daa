// Package feedback collects passenger feedback and improvement suggestions.
package feedback

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railmadad/portal/internal/repo"
)

// Repository stores notes in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append inserts a note.
func (r *Repository) Append(ctx context.Context, n repo.Note) (repo.Note, error) {
	const query = `
        INSERT INTO feedback (kind, category, message, user_email)
        VALUES ($1, $2, $3, $4)
        RETURNING id, kind, category, message, user_email, created_at`

	var out repo.Note
	err := r.pool.QueryRow(ctx, query, n.Kind, n.Category, n.Message, n.UserEmail).
		Scan(&out.ID, &out.Kind, &out.Category, &out.Message, &out.UserEmail, &out.CreatedAt)
	return out, err
}

// List returns notes of one kind, newest first.
func (r *Repository) List(ctx context.Context, kind repo.NoteKind, limit int) ([]repo.Note, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
        SELECT id, kind, category, message, user_email, created_at
        FROM feedback WHERE kind = $1
        ORDER BY created_at DESC, id DESC LIMIT $2`, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []repo.Note{}
	for rows.Next() {
		var n repo.Note
		if err := rows.Scan(&n.ID, &n.Kind, &n.Category, &n.Message, &n.UserEmail, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
