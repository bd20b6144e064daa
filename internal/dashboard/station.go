package dashboard

import (
	"context"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/gateway"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/session"
	"github.com/railmadad/portal/internal/workflow"
)

// StationMaster is the station-scoped dashboard.
type StationMaster struct {
	view
}

// NewStationMaster opens the station dashboard.
func NewStationMaster(sess *session.Session, api Backend) (*StationMaster, error) {
	v, err := newView(sess, api, access.StationDashboard, "station dashboard")
	if err != nil {
		return nil, err
	}
	return &StationMaster{view: v}, nil
}

// Station is the station the dashboard is scoped to.
func (m *StationMaster) Station() string {
	return m.sess.Station
}

// Load fetches the station's complaints.
func (m *StationMaster) Load(ctx context.Context) error {
	return m.load(ctx, func(ctx context.Context) ([]workflow.Complaint, error) {
		return m.api.StationComplaints(ctx, m.sess.Station)
	})
}

// Assign hands a complaint to a staff member; the status is left alone.
func (m *StationMaster) Assign(ctx context.Context, id int64, staff, remarks string) (workflow.Complaint, error) {
	return m.assign(ctx, id, staff, remarks)
}

// Escalate flags a complaint for RPF review. The status is untouched and the
// complaint shows up in SOS until it is resolved.
func (m *StationMaster) Escalate(ctx context.Context, id int64) (workflow.Complaint, error) {
	return m.escalate(ctx, id)
}

// Announce posts a notice to a team of this station.
func (m *StationMaster) Announce(ctx context.Context, team repo.Team, message string) (repo.Announcement, error) {
	if err := access.Require(m.sess.Role, access.PostAnnouncement); err != nil {
		return repo.Announcement{}, err
	}
	if _, ok := repo.ParseTeam(string(team)); !ok {
		return repo.Announcement{}, apperr.Validation("Choose a team")
	}
	return m.api.PostAnnouncement(ctx, gateway.NewAnnouncement{Station: m.sess.Station, Team: team, Message: message})
}

// Announcements fetches the station's notices; failures yield an empty list.
func (m *StationMaster) Announcements(ctx context.Context) []repo.Announcement {
	return announcements(ctx, &m.view)
}

// Staff lists the station's staff for the assignment picker.
func (m *StationMaster) Staff(ctx context.Context) ([]repo.User, error) {
	return m.api.Staff(ctx, m.sess.Station)
}
