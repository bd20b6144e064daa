// Package access maps sessions to the views and actions they may use.
package access

import (
	"github.com/railmadad/portal/internal/role"
	"github.com/railmadad/portal/internal/session"
)

// View is a screen of the portal.
type View string

const (
	Login             View = "login"
	Signup            View = "signup"
	PassengerHome     View = "passenger-home"
	ComplaintForm     View = "complaint-form"
	ComplaintList     View = "complaint-list"
	EmergencyContacts View = "emergency-contacts"
	StaffTasks        View = "staff-tasks"
	StationDashboard  View = "station-dashboard"
	Announcements     View = "announcements"
	AdminDashboard    View = "admin-dashboard"
	Analytics         View = "analytics"
	SuperAdminConsole View = "superadmin-console"
	UserManagement    View = "user-management"
)

// Public reports whether the view is reachable without a session.
func (v View) Public() bool {
	return v == Login || v == Signup
}

// Resolution is the landing view and permitted views of a session.
type Resolution struct {
	Landing View
	Allowed map[View]bool
}

// Allows reports whether v is in the allowed set.
func (r Resolution) Allows(v View) bool {
	return r.Allowed[v]
}

type grant struct {
	landing View
	views   []View
}

var grants = map[role.Role]grant{
	role.User: {
		landing: PassengerHome,
		views:   []View{PassengerHome, ComplaintForm, ComplaintList, EmergencyContacts},
	},
	role.StationStaff: {
		landing: StaffTasks,
		views:   []View{StaffTasks, EmergencyContacts},
	},
	role.StationMaster: {
		landing: StationDashboard,
		views:   []View{StationDashboard, ComplaintList, Announcements, EmergencyContacts},
	},
	role.RPFAdmin: {
		landing: AdminDashboard,
		views:   []View{AdminDashboard, ComplaintList, Analytics, EmergencyContacts},
	},
	role.SuperAdmin: {
		landing: SuperAdminConsole,
		views:   []View{SuperAdminConsole, UserManagement, ComplaintList, AdminDashboard, Analytics, EmergencyContacts},
	},
}

// Resolve returns the views a session may open. A nil session only sees the
// public views and lands on Login.
func Resolve(s *session.Session) Resolution {
	if s == nil {
		return Resolution{
			Landing: Login,
			Allowed: map[View]bool{Login: true, Signup: true},
		}
	}

	g, ok := grants[s.Role]
	if !ok {
		g = grants[role.User]
	}
	allowed := make(map[View]bool, len(g.views))
	for _, v := range g.views {
		allowed[v] = true
	}
	return Resolution{Landing: g.landing, Allowed: allowed}
}

// Landing is shorthand for Resolve(s).Landing.
func Landing(s *session.Session) View {
	return Resolve(s).Landing
}
