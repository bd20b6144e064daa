package access

import (
	"strings"

	"github.com/railmadad/portal/internal/session"
)

// Outcome says what navigating to a path does.
type Outcome int

const (
	Allow Outcome = iota
	RedirectLogin
	RedirectLanding
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectLanding:
		return "redirect-landing"
	}
	return "unknown"
}

// Decision is the result of routing a path for a session. View is the view
// that ends up rendered, Path its canonical location.
type Decision struct {
	Outcome Outcome
	View    View
	Path    string
}

// Root is the role-dependent home path.
const Root = "/"

var routes = map[string]View{
	"/login":                 Login,
	"/signup":                Signup,
	"/complaints/new":        ComplaintForm,
	"/complaints":            ComplaintList,
	"/emergency-contacts":    EmergencyContacts,
	"/staff":                 StaffTasks,
	"/station":               StationDashboard,
	"/station/announcements": Announcements,
	"/admin":                 AdminDashboard,
	"/admin/analytics":       Analytics,
	"/superadmin":            SuperAdminConsole,
	"/superadmin/users":      UserManagement,
}

var paths = func() map[View]string {
	out := make(map[View]string, len(routes)+1)
	for p, v := range routes {
		out[v] = p
	}
	out[PassengerHome] = Root
	return out
}()

// PathOf returns the canonical path of a view.
func PathOf(v View) string {
	return paths[v]
}

// Route decides what happens when s navigates to path. Every path maps to
// exactly one outcome:
//   - signed out: public views are allowed, everything else goes to Login;
//   - signed in: Login/Signup and views outside the role go to the landing view,
//     "/" renders the landing view, unknown paths go to the landing view.
func Route(s *session.Session, path string) Decision {
	path = cleanPath(path)
	res := Resolve(s)
	view, known := routes[path]

	if s == nil {
		if known && view.Public() {
			return Decision{Outcome: Allow, View: view, Path: path}
		}
		return Decision{Outcome: RedirectLogin, View: Login, Path: PathOf(Login)}
	}

	landing := Decision{Outcome: RedirectLanding, View: res.Landing, Path: PathOf(res.Landing)}
	if path == Root {
		return Decision{Outcome: Allow, View: res.Landing, Path: Root}
	}
	if !known || view.Public() || !res.Allows(view) {
		return landing
	}
	return Decision{Outcome: Allow, View: view, Path: path}
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return Root
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = Root
		}
	}
	return p
}
