// Package account stores portal users in Postgres.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railmadad/portal/internal/repo"
)

const userColumns = `id, username, email, full_name, password_hash, role, station_name, created_at`

// CreateInput is a new account row.
type CreateInput struct {
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	Role         string
	Station      *string
}

// UpdateInput changes role and/or station. ClearStation removes the station.
type UpdateInput struct {
	Role         *string
	Station      *string
	ClearStation bool
}

// Repository gives access to the users table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByLogin finds a user by email or username, case-insensitively.
func (r *Repository) GetByLogin(ctx context.Context, login string) (repo.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1) OR lower(username) = lower($1) LIMIT 1`
	return scanUser(r.pool.QueryRow(ctx, query, strings.TrimSpace(login)))
}

// GetByID finds a user by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (repo.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// Create inserts a user. A taken email or username yields repo.ErrConflict.
func (r *Repository) Create(ctx context.Context, in CreateInput) (repo.User, error) {
	query := `
        INSERT INTO users (username, email, full_name, password_hash, role, station_name)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + userColumns

	row := r.pool.QueryRow(ctx, query,
		strings.ToLower(strings.TrimSpace(in.Username)),
		strings.ToLower(strings.TrimSpace(in.Email)),
		strings.TrimSpace(in.FullName),
		in.PasswordHash,
		in.Role,
		in.Station,
	)
	user, err := scanUser(row)
	if isUniqueViolation(err) {
		return repo.User{}, repo.ErrConflict
	}
	return user, err
}

// List returns every user, newest first.
func (r *Repository) List(ctx context.Context) ([]repo.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
}

// ListStaff returns the station-level accounts, optionally of one station.
func (r *Repository) ListStaff(ctx context.Context, station string) ([]repo.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role IN ('STATION_STAFF', 'STATION_MASTER')`
	if strings.TrimSpace(station) == "" {
		return r.list(ctx, query+` ORDER BY station_name, full_name`)
	}
	return r.list(ctx, query+` AND lower(station_name) = lower($1) ORDER BY full_name`, strings.TrimSpace(station))
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]repo.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []repo.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return users, nil
}

// Update applies in to user id.
func (r *Repository) Update(ctx context.Context, id int64, in UpdateInput) (repo.User, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if in.Role != nil {
		setParts = append(setParts, fmt.Sprintf("role = $%d", idx))
		args = append(args, *in.Role)
		idx++
	}
	if in.ClearStation {
		setParts = append(setParts, "station_name = NULL")
	} else if in.Station != nil {
		setParts = append(setParts, fmt.Sprintf("station_name = $%d", idx))
		args = append(args, strings.TrimSpace(*in.Station))
		idx++
	}
	if len(setParts) == 0 {
		return r.GetByID(ctx, id)
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`, strings.Join(setParts, ", "), idx, userColumns)
	args = append(args, id)
	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// Delete removes user id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// CountByRole tallies users per role.
func (r *Repository) CountByRole(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT role, count(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int64{}
	for rows.Next() {
		var (
			role  string
			count int64
		)
		if err := rows.Scan(&role, &count); err != nil {
			return nil, err
		}
		out[role] = count
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row) (repo.User, error) {
	var u repo.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.Station, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.User{}, repo.ErrNotFound
		}
		return repo.User{}, err
	}
	u.UserCode = repo.UserCode(u.ID)
	return u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
