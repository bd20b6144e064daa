package access

import (
	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/role"
)

// Action is an operation a role may be allowed to invoke.
type Action string

const (
	SubmitComplaint        Action = "complaint.submit"
	ViewOwnComplaints      Action = "complaint.view_own"
	ViewAssignedComplaints Action = "complaint.view_assigned"
	ViewStationComplaints  Action = "complaint.view_station"
	ViewAllComplaints      Action = "complaint.view_all"
	StartComplaint         Action = "complaint.start"
	ResolveComplaint       Action = "complaint.resolve"
	AssignComplaint        Action = "complaint.assign"
	RemarkComplaint        Action = "complaint.remark"
	EscalateComplaint      Action = "complaint.escalate"
	ViewEscalated          Action = "complaint.view_escalated"
	ViewAnalytics          Action = "analytics.view"
	PostAnnouncement       Action = "announcement.post"
	ViewAnnouncements      Action = "announcement.view"
	ManageUsers            Action = "users.manage"
	SendFeedback           Action = "feedback.send"
	ReadFeedback           Action = "feedback.read"
)

var actions = map[role.Role]map[Action]bool{
	role.User: set(SubmitComplaint, ViewOwnComplaints, SendFeedback),
	role.StationStaff: set(ViewAssignedComplaints, StartComplaint, ResolveComplaint,
		RemarkComplaint, EscalateComplaint, ViewAnnouncements, SendFeedback),
	role.StationMaster: set(ViewStationComplaints, ViewAssignedComplaints, StartComplaint,
		ResolveComplaint, AssignComplaint, RemarkComplaint, EscalateComplaint,
		PostAnnouncement, ViewAnnouncements, SendFeedback),
	role.RPFAdmin: set(ViewAllComplaints, ViewStationComplaints, ViewAssignedComplaints,
		StartComplaint, ResolveComplaint, AssignComplaint, RemarkComplaint, ViewEscalated,
		ViewAnalytics, ViewAnnouncements, SendFeedback, ReadFeedback),
	role.SuperAdmin: set(ViewAllComplaints, ViewStationComplaints, ViewAssignedComplaints,
		StartComplaint, ResolveComplaint, AssignComplaint, RemarkComplaint, ViewEscalated,
		ViewAnalytics, ViewAnnouncements, ManageUsers, SendFeedback, ReadFeedback),
}

func set(list ...Action) map[Action]bool {
	m := make(map[Action]bool, len(list))
	for _, a := range list {
		m[a] = true
	}
	return m
}

// Can reports whether r may invoke a.
func Can(r role.Role, a Action) bool {
	return actions[r][a]
}

// Require returns an authorization error when r may not invoke a.
func Require(r role.Role, a Action) error {
	if Can(r, a) {
		return nil
	}
	return apperr.Forbidden("%s accounts cannot perform %s", r.Label(), a)
}

// RolesFor lists the roles allowed to invoke a.
func RolesFor(a Action) []role.Role {
	var out []role.Role
	for _, r := range role.All {
		if Can(r, a) {
			out = append(out, r)
		}
	}
	return out
}
