package workflow

import (
	"strings"
	"time"

	"github.com/railmadad/portal/internal/urgency"
)

// Complaint is a passenger grievance as the backend reports it.
type Complaint struct {
	ID            int64      `json:"id"`
	PassengerName   string     `json:"passengerName"`
	PassengerPhone  *string    `json:"passengerPhone,omitempty"`
	ComplaintText   string     `json:"complaintText"`
	Status          Status     `json:"status"`
	Department      *string    `json:"department"`
	Station         *string    `json:"station"`
	TrainNumber     *string    `json:"trainNumber,omitempty"`
	PreviousStation *string    `json:"previousStation,omitempty"`
	NextStation     *string    `json:"nextStation,omitempty"`
	IncidentAt      *time.Time `json:"incidentAt,omitempty"`
	AssignedTo      *string    `json:"assignedTo"`
	UrgencyScore    *int       `json:"urgencyScore"`
	Remarks         *string    `json:"remarks"`
	CreatedBy       *string    `json:"createdBy,omitempty"`
	ResolvedBy      *string    `json:"resolvedBy"`
	Escalated       bool       `json:"escalated"`
	EscalatedBy     *string    `json:"escalatedBy,omitempty"`
	EscalatedAt     *time.Time `json:"escalatedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       *time.Time `json:"updatedAt"`
}

// Tracking is the public view of a complaint: enough to follow its progress
// by reference number, nothing that identifies the passenger.
type Tracking struct {
	ID         int64      `json:"id"`
	Status     Status     `json:"status"`
	Department *string    `json:"department"`
	Station    *string    `json:"station"`
	Escalated  bool       `json:"escalated"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt"`
}

// Track strips c down to its public view.
func (c Complaint) Track() Tracking {
	return Tracking{
		ID:         c.ID,
		Status:     c.Status,
		Department: c.Department,
		Station:    c.Station,
		Escalated:  c.Escalated,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// Urgent reports whether the complaint needs immediate attention.
func (c Complaint) Urgent() bool {
	return urgency.IsUrgent(urgency.Subject{
		Text:     c.ComplaintText,
		Score:    c.UrgencyScore,
		Resolved: c.Status == Resolved,
	})
}

// SOS reports whether the complaint belongs in the SOS/escalated panel:
// open, and either urgent or handed off to RPF.
func (c Complaint) SOS() bool {
	return c.Status != Resolved && (c.Escalated || c.Urgent())
}

// Level is the urgency badge.
func (c Complaint) Level() urgency.Level {
	return urgency.LevelOf(c.UrgencyScore)
}

// IsAssignedTo compares the assignee case-insensitively.
func (c Complaint) IsAssignedTo(username string) bool {
	return c.AssignedTo != nil && username != "" && strings.EqualFold(strings.TrimSpace(*c.AssignedTo), strings.TrimSpace(username))
}

// AtStation compares the complaint's station case-insensitively.
func (c Complaint) AtStation(station string) bool {
	return c.Station != nil && station != "" && strings.EqualFold(strings.TrimSpace(*c.Station), strings.TrimSpace(station))
}

// Str returns a pointer to s, or nil when s is blank.
func Str(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
