package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/gateway"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/role"
	"github.com/railmadad/portal/internal/session"
	"github.com/railmadad/portal/internal/workflow"
)

func sessionFor(r role.Role, username, station string) *session.Session {
	return &session.Session{Token: "tok", Role: r, Username: username, DisplayName: "Test", Station: station}
}

func TestPassengerSubmitShowsComplaint(t *testing.T) {
	api := newFakeBackend()
	p, err := NewPassenger(sessionFor(role.User, "asha@rail.in", ""), api)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, p.Load(ctx))
	assert.Empty(t, p.Complaints())

	created, err := p.Submit(ctx, gateway.NewComplaint{PassengerName: "Asha", ComplaintText: "Water leakage at platform 2", Station: "Pune"})
	require.NoError(t, err)
	assert.Equal(t, int64(101), created.ID)

	list := p.Complaints()
	require.Len(t, list, 1)
	assert.Equal(t, int64(101), list[0].ID)
	assert.Equal(t, workflow.Pending, list[0].Status)

	require.NoError(t, p.Load(ctx))
	assert.Len(t, p.Complaints(), 1)
}

func TestPassengerValidationBlocksSubmission(t *testing.T) {
	api := newFakeBackend()
	p, err := NewPassenger(sessionFor(role.User, "asha@rail.in", ""), api)
	require.NoError(t, err)

	_, err = p.Submit(context.Background(), gateway.NewComplaint{ComplaintText: "  "})
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Zero(t, api.count("SubmitComplaint"))
}

func TestStationMasterEscalationKeepsStatus(t *testing.T) {
	api := newFakeBackend()
	api.seed(workflow.Complaint{ID: 101, PassengerName: "Asha", ComplaintText: "Water leakage at platform 2",
		Status: workflow.InProgress, Station: workflow.Str("Pune"), CreatedAt: time.Now()})
	m, err := NewStationMaster(sessionFor(role.StationMaster, "sm@rail.in", "Pune"), api)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, m.Load(ctx))
	assert.Empty(t, m.SOS())

	got, err := m.Escalate(ctx, 101)
	require.NoError(t, err)
	assert.True(t, got.Escalated)
	assert.Equal(t, workflow.InProgress, got.Status)

	sos := m.SOS()
	require.Len(t, sos, 1)
	assert.Equal(t, int64(101), sos[0].ID)

	_, err = m.Escalate(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("Escalate"), "second escalation is a no-op")

	admin, err := NewAdmin(sessionFor(role.RPFAdmin, "rpf@rail.in", ""), api)
	require.NoError(t, err)
	require.NoError(t, admin.Load(ctx))
	require.Len(t, admin.Escalated(), 1)
	require.Len(t, admin.SOS(), 1)
}

func TestStaffWithoutAssignmentsSeesEmptyList(t *testing.T) {
	api := newFakeBackend()
	api.seed(workflow.Complaint{ID: 5, Status: workflow.Pending, AssignedTo: workflow.Str("someone-else")})
	s, err := NewStaff(sessionFor(role.StationStaff, "ravi@rail.in", "Pune"), api)
	require.NoError(t, err)

	require.NoError(t, s.Load(context.Background()))
	assert.True(t, s.Empty())
	assert.NotNil(t, s.Tasks())
	assert.Empty(t, s.Tasks())
}

func TestResolveTwiceSendsOneRequest(t *testing.T) {
	api := newFakeBackend()
	api.seed(workflow.Complaint{ID: 7, Status: workflow.Pending, AssignedTo: workflow.Str("ravi@rail.in")})
	s, err := NewStaff(sessionFor(role.StationStaff, "ravi@rail.in", "Pune"), api)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	first, err := s.Resolve(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, workflow.Resolved, first.Status)

	second, err := s.Resolve(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, workflow.Resolved, second.Status)
	assert.Equal(t, 1, api.count("UpdateStatus"))

	_, err = s.Start(ctx, 7)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestFailedUpdateLeavesBoardUnchanged(t *testing.T) {
	api := newFakeBackend()
	api.seed(workflow.Complaint{ID: 9, Status: workflow.Pending, Station: workflow.Str("Pune")})
	m, err := NewStationMaster(sessionFor(role.StationMaster, "sm@rail.in", "Pune"), api)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, m.Load(ctx))

	api.fail["UpdateStatus"] = errDown
	_, err = m.Start(ctx, 9)
	require.ErrorIs(t, err, apperr.ErrNetwork)

	got, ok := m.Complaint(9)
	require.True(t, ok)
	assert.Equal(t, workflow.Pending, got.Status)
}

func TestAssignLeavesStatusAlone(t *testing.T) {
	api := newFakeBackend()
	api.seed(workflow.Complaint{ID: 11, Status: workflow.Pending, Station: workflow.Str("Pune")})
	m, err := NewStationMaster(sessionFor(role.StationMaster, "sm@rail.in", "Pune"), api)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, m.Load(ctx))

	got, err := m.Assign(ctx, 11, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", workflow.Deref(got.AssignedTo))
	assert.Equal(t, workflow.Pending, got.Status)

	local, _ := m.Complaint(11)
	assert.Equal(t, "alice", workflow.Deref(local.AssignedTo))
}

func TestClosedViewIgnoresLateResponse(t *testing.T) {
	api := newFakeBackend()
	api.seed(workflow.Complaint{ID: 3, Status: workflow.Pending, Station: workflow.Str("Pune")})
	m, err := NewStationMaster(sessionFor(role.StationMaster, "sm@rail.in", "Pune"), api)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, m.Load(ctx))

	api.before = func(op string) {
		if op == "UpdateStatus" {
			m.Close()
		}
	}
	_, err = m.Resolve(ctx, 3)
	require.NoError(t, err)

	local, _ := m.Complaint(3)
	assert.Equal(t, workflow.Pending, local.Status)
}

func TestBestEffortPanelsDefaultToEmpty(t *testing.T) {
	api := newFakeBackend()
	api.fail["ByDepartment"] = errDown
	api.fail["TopIssues"] = errDown
	api.fail["EmergencyContacts"] = errDown
	api.fail["Helpline"] = errDown
	a, err := NewAdmin(sessionFor(role.RPFAdmin, "rpf@rail.in", ""), api)
	require.NoError(t, err)
	ctx := context.Background()

	stats := a.Analytics(ctx)
	assert.Empty(t, stats.ByDepartment)
	assert.NotNil(t, stats.TopIssues)

	contacts := a.Contacts(ctx)
	assert.Empty(t, contacts.Numbers)
	assert.Nil(t, contacts.Helpline)
}

func TestAnalyticsAndContacts(t *testing.T) {
	api := newFakeBackend()
	api.seed(workflow.Complaint{ID: 1, Department: workflow.Str("Water")})
	api.seed(workflow.Complaint{ID: 2, Department: workflow.Str("Water")})
	api.seed(workflow.Complaint{ID: 3, Department: workflow.Str("Security")})
	a, err := NewAdmin(sessionFor(role.RPFAdmin, "rpf@rail.in", ""), api)
	require.NoError(t, err)
	ctx := context.Background()

	stats := a.Analytics(ctx)
	assert.Equal(t, []string{"Water", "Security"}, stats.Departments())
	assert.Equal(t, []string{"Water"}, stats.TopIssues)

	contacts := a.Contacts(ctx)
	assert.Len(t, contacts.Numbers, 3)
	require.NotNil(t, contacts.Helpline)
	assert.Equal(t, "139", contacts.Helpline.Number)
}

func TestConstructorsEnforceRole(t *testing.T) {
	api := newFakeBackend()
	_, err := NewStationMaster(sessionFor(role.User, "asha@rail.in", ""), api)
	require.ErrorIs(t, err, apperr.ErrAuthorization)
	_, err = NewSuperAdmin(sessionFor(role.RPFAdmin, "rpf@rail.in", ""), api)
	require.ErrorIs(t, err, apperr.ErrAuthorization)
	_, err = NewPassenger(nil, api)
	require.ErrorIs(t, err, apperr.ErrAuth)

	sa, err := NewSuperAdmin(sessionFor(role.SuperAdmin, "root@rail.in", ""), api)
	require.NoError(t, err)
	_, err = NewAdmin(sessionFor(role.SuperAdmin, "root@rail.in", ""), api)
	require.NoError(t, err)

	users, err := sa.Users(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "USR-000001", users[0].UserCode)
}

func TestStationMasterAnnouncements(t *testing.T) {
	api := newFakeBackend()
	m, err := NewStationMaster(sessionFor(role.StationMaster, "sm@rail.in", "Pune"), api)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = m.Announce(ctx, repo.Team("Kitchen"), "hello")
	require.ErrorIs(t, err, apperr.ErrValidation)

	a, err := m.Announce(ctx, repo.TeamCleaning, "Clean platform 2")
	require.NoError(t, err)
	assert.Equal(t, "Pune", a.Station)

	list := m.Announcements(ctx)
	require.Len(t, list, 1)

	api.fail["Announcements"] = errDown
	assert.Empty(t, m.Announcements(ctx))
}

func TestStaffRosterScopes(t *testing.T) {
	api := newFakeBackend()
	ctx := context.Background()

	m, err := NewStationMaster(sessionFor(role.StationMaster, "sm@rail.in", "Pune"), api)
	require.NoError(t, err)
	staff, err := m.Staff(ctx)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "ravi@rail.in", staff[0].Email)

	a, err := NewAdmin(sessionFor(role.RPFAdmin, "rpf@rail.in", ""), api)
	require.NoError(t, err)
	all, err := a.Staff(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
