package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/role"
)

func TestNextTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		event   Event
		to      Status
		changed bool
		legal   bool
	}{
		{Pending, Start, InProgress, true, true},
		{Pending, Resolve, Resolved, true, true},
		{InProgress, Resolve, Resolved, true, true},
		{InProgress, Start, InProgress, false, true},
		{Resolved, Resolve, Resolved, false, true},
		{Resolved, Start, Resolved, false, false},
	}
	for _, tc := range cases {
		to, changed, err := Next(tc.from, tc.event)
		if !tc.legal {
			require.ErrorIs(t, err, ErrIllegalTransition, "%s %s", tc.from, tc.event)
			assert.Equal(t, tc.from, to)
			continue
		}
		require.NoError(t, err, "%s %s", tc.from, tc.event)
		assert.Equal(t, tc.to, to)
		assert.Equal(t, tc.changed, changed)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	s, _, err := Next(Pending, Resolve)
	require.NoError(t, err)
	assert.Equal(t, Resolved, s)

	again, changed, err := Next(s, Resolve)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, Resolved, again)
}

func TestEventFor(t *testing.T) {
	e, err := EventFor(Resolved)
	require.NoError(t, err)
	assert.Equal(t, Resolve, e)

	_, err = EventFor(Pending)
	require.ErrorIs(t, err, ErrIllegalTransition)

	_, err = ParseStatus("done")
	require.ErrorIs(t, err, ErrInvalidStatus)
	s, err := ParseStatus(" in_progress ")
	require.NoError(t, err)
	assert.Equal(t, InProgress, s)
}

func complaintAt(station, assignee string, status Status) Complaint {
	return Complaint{ID: 101, Status: status, Station: Str(station), AssignedTo: Str(assignee), ComplaintText: "Water leakage at platform 2"}
}

func TestTransitionScope(t *testing.T) {
	c := complaintAt("Pune", "ravi@rail.in", Pending)

	staff := Actor{Username: "ravi@rail.in", Role: role.StationStaff, Station: "Pune"}
	to, changed, err := Transition(staff, c, Start)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, InProgress, to)

	other := Actor{Username: "anil@rail.in", Role: role.StationStaff, Station: "Pune"}
	_, _, err = Transition(other, c, Start)
	require.ErrorIs(t, err, apperr.ErrAuthorization)

	master := Actor{Username: "sm@rail.in", Role: role.StationMaster, Station: "pune"}
	_, _, err = Transition(master, c, Resolve)
	require.NoError(t, err)

	elsewhere := Actor{Username: "sm2@rail.in", Role: role.StationMaster, Station: "Nagpur"}
	_, _, err = Transition(elsewhere, c, Resolve)
	require.ErrorIs(t, err, apperr.ErrAuthorization)

	passenger := Actor{Username: "asha@rail.in", Role: role.User}
	_, _, err = Transition(passenger, c, Resolve)
	require.ErrorIs(t, err, apperr.ErrAuthorization)

	admin := Actor{Username: "rpf@rail.in", Role: role.RPFAdmin}
	_, _, err = Transition(admin, complaintAt("Pune", "", Resolved), Start)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAssignRules(t *testing.T) {
	master := Actor{Username: "sm@rail.in", Role: role.StationMaster, Station: "Pune"}
	require.NoError(t, CheckAssign(master, complaintAt("Pune", "", InProgress), "alice"))
	require.ErrorIs(t, CheckAssign(master, complaintAt("Pune", "", Resolved), "alice"), apperr.ErrValidation)
	require.ErrorIs(t, CheckAssign(master, complaintAt("Pune", "", Pending), " "), apperr.ErrValidation)

	staff := Actor{Username: "alice", Role: role.StationStaff, Station: "Pune"}
	require.ErrorIs(t, CheckAssign(staff, complaintAt("Pune", "alice", Pending), "bob"), apperr.ErrAuthorization)
}

func TestRemarkRules(t *testing.T) {
	admin := Actor{Username: "rpf", Role: role.RPFAdmin}
	for _, s := range Statuses {
		require.NoError(t, CheckRemark(admin, complaintAt("Pune", "", s), "checked"))
	}
	require.ErrorIs(t, CheckRemark(admin, complaintAt("Pune", "", Pending), "  "), apperr.ErrValidation)
}

func TestEscalateRules(t *testing.T) {
	master := Actor{Username: "sm", Role: role.StationMaster, Station: "Pune"}
	c := complaintAt("Pune", "", InProgress)

	changed, err := CheckEscalate(master, c)
	require.NoError(t, err)
	assert.True(t, changed)

	c.Escalated = true
	changed, err = CheckEscalate(master, c)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = CheckEscalate(Actor{Role: role.RPFAdmin}, c)
	require.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = CheckEscalate(master, complaintAt("Pune", "", Resolved))
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestComplaintSOS(t *testing.T) {
	c := complaintAt("Pune", "", InProgress)
	assert.False(t, c.SOS())
	c.Escalated = true
	assert.True(t, c.SOS())
	assert.Equal(t, InProgress, c.Status)
	c.Status = Resolved
	assert.False(t, c.SOS())
	assert.False(t, c.Urgent())
}

func TestBoardAppliesOnlyServerResponsesInIssueOrder(t *testing.T) {
	b := NewBoard()
	load := b.BeginLoad()
	require.True(t, b.FinishLoad(load, []Complaint{complaintAt("Pune", "", Pending)}))

	first := b.Issue(101)
	second := b.Issue(101)

	started := complaintAt("Pune", "", InProgress)
	resolved := complaintAt("Pune", "", Resolved)

	assert.True(t, b.Apply(second, resolved))
	assert.False(t, b.Apply(first, started), "older response must not overwrite newer one")

	got, ok := b.Get(101)
	require.True(t, ok)
	assert.Equal(t, Resolved, got.Status)
}

func TestBoardDropsStaleLoadsAndClosedViews(t *testing.T) {
	b := NewBoard()
	old := b.BeginLoad()
	fresh := b.BeginLoad()

	require.True(t, b.FinishLoad(fresh, []Complaint{{ID: 1, Status: Pending}}))
	assert.False(t, b.FinishLoad(old, []Complaint{{ID: 2, Status: Pending}}))
	assert.Equal(t, 1, b.Len())

	b.Close()
	assert.False(t, b.Apply(b.Issue(1), Complaint{ID: 1, Status: Resolved}))
	got, _ := b.Get(1)
	assert.Equal(t, Pending, got.Status)
}

func TestBoardKeepsNewerLocalCopyDuringRefresh(t *testing.T) {
	b := NewBoard()
	load := b.BeginLoad()
	tk := b.Issue(7)
	require.True(t, b.Apply(tk, Complaint{ID: 7, Status: Resolved}))

	require.True(t, b.FinishLoad(load, []Complaint{{ID: 7, Status: Pending}, {ID: 8, Status: Pending}}))
	got, _ := b.Get(7)
	assert.Equal(t, Resolved, got.Status)
	assert.Equal(t, map[Status]int{Pending: 1, InProgress: 0, Resolved: 1}, b.Counts())
}

func TestByUrgency(t *testing.T) {
	hi, lo := 95, 35
	now := time.Now()
	list := []Complaint{
		{ID: 1, UrgencyScore: &lo, CreatedAt: now},
		{ID: 2, UrgencyScore: &hi, CreatedAt: now.Add(-time.Hour)},
		{ID: 3, CreatedAt: now},
		{ID: 4, UrgencyScore: &hi, CreatedAt: now},
	}
	sorted := ByUrgency(list)
	ids := []int64{sorted[0].ID, sorted[1].ID, sorted[2].ID, sorted[3].ID}
	assert.Equal(t, []int64{4, 2, 1, 3}, ids)
	assert.Equal(t, int64(1), list[0].ID)
}
