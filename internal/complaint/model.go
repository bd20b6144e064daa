// Package complaint stores complaints and drives them through the workflow.
package complaint

import (
	"errors"
	"time"

	"github.com/railmadad/portal/internal/workflow"
)

var (
	// ErrNotFound is returned for unknown complaint ids.
	ErrNotFound = errors.New("complaint not found")
	// ErrStale is returned when the stored status no longer matches
	// Change.Expect.
	ErrStale = errors.New("complaint changed concurrently")
)

// CreateInput is a classified, sanitized new complaint.
type CreateInput struct {
	PassengerName   string
	Phone           *string
	Text            string
	Station         *string
	Train           *string
	PreviousStation *string
	NextStation     *string
	IncidentAt      *time.Time
	Department      string
	Score           int
	CreatedBy       string
}

// Filter narrows a listing. Empty fields do not filter.
type Filter struct {
	CreatedBy  string
	Station    string
	AssignedTo string
	Department string
	Escalated  bool
	OpenOnly   bool
}

// Change is a partial update. Only non-nil fields are written. Expect, when
// set, is the status the change was decided on; the write fails with ErrStale
// if the row has moved on.
type Change struct {
	Expect      workflow.Status
	Status      *workflow.Status
	ResolvedBy  *string
	AssignedTo  *string
	Remarks     *string
	EscalatedBy *string
	EscalatedAt *time.Time
}

// HistoryInput is the history row written next to a change.
type HistoryInput struct {
	OldStatus workflow.Status
	NewStatus workflow.Status
	Note      *string
	UpdatedBy string
}

// Counts aggregates complaints for analytics and stats.
type Counts struct {
	Total        int64
	ByDepartment map[string]int64
	ByStatus     map[string]int64
	Escalated    int64
}
