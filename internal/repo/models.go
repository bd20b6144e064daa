package repo

import (
	"fmt"
	"strings"
	"time"
)

// User is an account as the super admin console sees it.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Role         string    `json:"role"`
	Station      *string   `json:"stationName"`
	UserCode     string    `json:"userCode"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserCode formats the public code of a user id.
func UserCode(id int64) string {
	return fmt.Sprintf("USR-%06d", id)
}

// Stats summarises accounts and complaints for the super admin.
type Stats struct {
	TotalUsers      int64            `json:"totalUsers"`
	UsersByRole     map[string]int64 `json:"usersByRole"`
	TotalComplaints int64            `json:"totalComplaints"`
	ByStatus        map[string]int64 `json:"byStatus"`
	Escalated       int64            `json:"escalated"`
}

// Team is the audience of a station announcement.
type Team string

const (
	TeamCleaning    Team = "Cleaning"
	TeamMaintenance Team = "Maintenance"
	TeamSecurity    Team = "Security"
	TeamMedical     Team = "Medical"
	TeamAllStaff    Team = "AllStaff"
)

// Teams lists every announcement audience.
var Teams = []Team{TeamCleaning, TeamMaintenance, TeamSecurity, TeamMedical, TeamAllStaff}

// ParseTeam accepts a team name case-insensitively; "all staff" and
// "ALL_STAFF" both mean AllStaff.
func ParseTeam(value string) (Team, bool) {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(value)))
	for _, t := range Teams {
		if strings.ToLower(string(t)) == key {
			return t, true
		}
	}
	return "", false
}

// NoteKind separates passenger feedback from improvement suggestions.
type NoteKind string

const (
	KindFeedback   NoteKind = "FEEDBACK"
	KindSuggestion NoteKind = "SUGGESTION"
)

// Categories a feedback note may carry. Suggestions are always General.
const (
	CategoryGeneral      = "GENERAL"
	CategoryAppreciation = "APPRECIATION"
	CategoryCleanliness  = "CLEANLINESS"
	CategoryStaff        = "STAFF"
	CategoryPunctuality  = "PUNCTUALITY"
	CategoryFood         = "FOOD"
)

// Categories lists the accepted feedback categories.
var Categories = []string{CategoryGeneral, CategoryAppreciation, CategoryCleanliness,
	CategoryStaff, CategoryPunctuality, CategoryFood}

// ParseCategory accepts a category case-insensitively; blank means General.
func ParseCategory(value string) (string, bool) {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return CategoryGeneral, true
	}
	for _, c := range Categories {
		if c == value {
			return c, true
		}
	}
	return "", false
}

// Note is a piece of feedback or a suggestion left by a signed-in user.
type Note struct {
	ID        int64     `json:"id"`
	Kind      NoteKind  `json:"kind"`
	Category  string    `json:"type"`
	Message   string    `json:"message"`
	UserEmail string    `json:"userEmail"`
	CreatedAt time.Time `json:"createdAt"`
}

// Announcement is one entry of a station's append-only notice log.
type Announcement struct {
	ID        int64     `json:"id"`
	Station   string    `json:"station"`
	Team      Team      `json:"team"`
	Message   string    `json:"message"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryEntry records one change to a complaint.
type HistoryEntry struct {
	ID          int64     `json:"id"`
	ComplaintID int64     `json:"complaintId"`
	OldStatus   *string   `json:"oldStatus"`
	NewStatus   string    `json:"newStatus"`
	Note        *string   `json:"note"`
	UpdatedBy   string    `json:"updatedBy"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Contact is an emergency number.
type Contact struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

// Helpline is the general assistance number.
type Helpline struct {
	Number      string `json:"number"`
	Description string `json:"description"`
}

// EmergencyContacts are the fixed numbers shown to passengers.
var EmergencyContacts = []Contact{
	{Type: "Security/Medical Assistance", Number: "139"},
	{Type: "Fire", Number: "101"},
	{Type: "Police", Number: "100"},
}

// DefaultHelpline is the railway helpline.
var DefaultHelpline = Helpline{Number: "139", Description: "For Security/Medical Assistance"}
