package complaint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railmadad/portal/internal/db"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/workflow"
)

const columns = `id, passenger_name, passenger_phone, complaint_text, status, department, station,
    train_number, previous_station, next_station, incident_at, assigned_to, urgency_score,
    remarks, created_by, resolved_by, escalated, escalated_by, escalated_at, created_at, updated_at`

// Repository is the Postgres store of complaints and their history.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a PENDING complaint and its first history row.
func (r *Repository) Create(ctx context.Context, in CreateInput) (workflow.Complaint, error) {
	var out workflow.Complaint
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const query = `
            INSERT INTO complaints (passenger_name, passenger_phone, complaint_text, status, department, station,
                train_number, previous_station, next_station, incident_at, urgency_score, created_by)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
            RETURNING ` + columns

		c, err := scan(tx.QueryRow(ctx, query,
			in.PassengerName, in.Phone, in.Text, workflow.Pending, in.Department, in.Station,
			in.Train, in.PreviousStation, in.NextStation, in.IncidentAt, in.Score, in.CreatedBy))
		if err != nil {
			return err
		}
		if err := insertHistory(ctx, tx, c.ID, HistoryInput{NewStatus: workflow.Pending, UpdatedBy: in.CreatedBy}); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

// Get loads one complaint.
func (r *Repository) Get(ctx context.Context, id int64) (workflow.Complaint, error) {
	return scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM complaints WHERE id = $1`, id))
}

// List returns complaints matching f, newest first.
func (r *Repository) List(ctx context.Context, f Filter) ([]workflow.Complaint, error) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)
	add := func(clause string, arg any) {
		clauses = append(clauses, fmt.Sprintf(clause, idx))
		args = append(args, arg)
		idx++
	}
	if f.CreatedBy != "" {
		add("lower(created_by) = lower($%d)", f.CreatedBy)
	}
	if f.Station != "" {
		add("lower(station) = lower($%d)", f.Station)
	}
	if f.AssignedTo != "" {
		add("lower(assigned_to) = lower($%d)", f.AssignedTo)
	}
	if f.Department != "" {
		add("lower(department) = lower($%d)", f.Department)
	}
	if f.Escalated {
		clauses = append(clauses, "escalated")
	}
	if f.OpenOnly {
		add("status <> $%d", workflow.Resolved)
	}

	query := `SELECT ` + columns + ` FROM complaints`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []workflow.Complaint{}
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Update applies ch and records h in one transaction. The row is locked
// before the expected status is compared, so two writers decided on the same
// read cannot both succeed.
func (r *Repository) Update(ctx context.Context, id int64, ch Change, h HistoryInput) (workflow.Complaint, error) {
	setParts := []string{"updated_at = now()"}
	args := []any{}
	idx := 1
	set := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}
	if ch.Status != nil {
		set("status", *ch.Status)
	}
	if ch.ResolvedBy != nil {
		set("resolved_by", *ch.ResolvedBy)
	}
	if ch.AssignedTo != nil {
		set("assigned_to", *ch.AssignedTo)
	}
	if ch.Remarks != nil {
		set("remarks", *ch.Remarks)
	}
	if ch.EscalatedBy != nil {
		// The first escalation wins; repeats keep its author and time.
		setParts = append(setParts, "escalated = true",
			fmt.Sprintf("escalated_by = COALESCE(escalated_by, $%d)", idx),
			fmt.Sprintf("escalated_at = COALESCE(escalated_at, $%d)", idx+1))
		args = append(args, *ch.EscalatedBy, ch.EscalatedAt)
		idx += 2
	}

	query := fmt.Sprintf(`UPDATE complaints SET %s WHERE id = $%d RETURNING %s`, strings.Join(setParts, ", "), idx, columns)
	args = append(args, id)

	var out workflow.Complaint
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var current workflow.Status
		err := tx.QueryRow(ctx, `SELECT status FROM complaints WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if ch.Expect != "" && current != ch.Expect {
			return ErrStale
		}

		c, err := scan(tx.QueryRow(ctx, query, args...))
		if err != nil {
			return err
		}
		if err := insertHistory(ctx, tx, id, h); err != nil {
			return err
		}
		out = c
		return nil
	})
	return out, err
}

func insertHistory(ctx context.Context, tx pgx.Tx, id int64, h HistoryInput) error {
	var old *string
	if h.OldStatus != "" {
		s := h.OldStatus.String()
		old = &s
	}
	_, err := tx.Exec(ctx, `
        INSERT INTO complaint_history (complaint_id, old_status, new_status, note, updated_by)
        VALUES ($1, $2, $3, $4, $5)`, id, old, h.NewStatus, h.Note, h.UpdatedBy)
	return err
}

// History lists the changes of a complaint, oldest first.
func (r *Repository) History(ctx context.Context, id int64) ([]repo.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, complaint_id, old_status, new_status, note, updated_by, updated_at
        FROM complaint_history WHERE complaint_id = $1 ORDER BY updated_at, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []repo.HistoryEntry{}
	for rows.Next() {
		var h repo.HistoryEntry
		if err := rows.Scan(&h.ID, &h.ComplaintID, &h.OldStatus, &h.NewStatus, &h.Note, &h.UpdatedBy, &h.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// Counts aggregates every complaint.
func (r *Repository) Counts(ctx context.Context) (Counts, error) {
	out := Counts{ByDepartment: map[string]int64{}, ByStatus: map[string]int64{}}

	rows, err := r.pool.Query(ctx, `
        SELECT coalesce(department, 'General'), status, escalated AND status <> 'RESOLVED', count(*)
        FROM complaints GROUP BY 1, 2, 3`)
	if err != nil {
		return out, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			department, status string
			escalated          bool
			n                  int64
		)
		if err := rows.Scan(&department, &status, &escalated, &n); err != nil {
			return out, err
		}
		out.Total += n
		out.ByDepartment[department] += n
		out.ByStatus[status] += n
		if escalated {
			out.Escalated += n
		}
	}
	return out, rows.Err()
}

func scan(row pgx.Row) (workflow.Complaint, error) {
	var c workflow.Complaint
	err := row.Scan(&c.ID, &c.PassengerName, &c.PassengerPhone, &c.ComplaintText, &c.Status, &c.Department,
		&c.Station, &c.TrainNumber, &c.PreviousStation, &c.NextStation, &c.IncidentAt, &c.AssignedTo, &c.UrgencyScore, &c.Remarks, &c.CreatedBy, &c.ResolvedBy, &c.Escalated,
		&c.EscalatedBy, &c.EscalatedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return workflow.Complaint{}, ErrNotFound
		}
		return workflow.Complaint{}, err
	}
	return c, nil
}

// TopIssues returns the most frequently filed complaint texts.
func (r *Repository) TopIssues(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, `
        SELECT complaint_text FROM complaints
        GROUP BY complaint_text ORDER BY count(*) DESC, max(created_at) DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, rows.Err()
}
