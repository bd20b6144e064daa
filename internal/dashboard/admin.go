package dashboard

import (
	"context"
	"sort"
	"strings"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/session"
	"github.com/railmadad/portal/internal/workflow"
)

// Admin is the national RPF dashboard.
type Admin struct {
	view
}

// NewAdmin opens the admin dashboard.
func NewAdmin(sess *session.Session, api Backend) (*Admin, error) {
	v, err := newView(sess, api, access.AdminDashboard, "admin dashboard")
	if err != nil {
		return nil, err
	}
	return &Admin{view: v}, nil
}

// Load fetches every complaint.
func (a *Admin) Load(ctx context.Context) error {
	return a.load(ctx, a.api.Complaints)
}

// Assign hands a complaint to an officer.
func (a *Admin) Assign(ctx context.Context, id int64, staff, remarks string) (workflow.Complaint, error) {
	return a.assign(ctx, id, staff, remarks)
}

// Escalated lists complaints escalated by stations, from the board.
func (a *Admin) Escalated() []workflow.Complaint {
	return a.board.Filter(func(c workflow.Complaint) bool { return c.Escalated && c.Status != workflow.Resolved })
}

// Department filters the board by department, case-insensitively.
func (a *Admin) Department(name string) []workflow.Complaint {
	return a.board.Filter(func(c workflow.Complaint) bool {
		return strings.EqualFold(workflow.Deref(c.Department), strings.TrimSpace(name))
	})
}

// Analytics is the best-effort statistics panel.
type Analytics struct {
	ByDepartment map[string]int64
	TopIssues    []string
}

// Departments returns the departments sorted by descending count.
func (a Analytics) Departments() []string {
	out := make([]string, 0, len(a.ByDepartment))
	for d := range a.ByDepartment {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if a.ByDepartment[out[i]] != a.ByDepartment[out[j]] {
			return a.ByDepartment[out[i]] > a.ByDepartment[out[j]]
		}
		return out[i] < out[j]
	})
	return out
}

// Analytics loads the charts. Failures leave a panel empty and are not reported.
func (a *Admin) Analytics(ctx context.Context) Analytics {
	out := Analytics{ByDepartment: map[string]int64{}, TopIssues: []string{}}
	if !access.Can(a.sess.Role, access.ViewAnalytics) {
		return out
	}
	if m, err := a.api.ByDepartment(ctx); err != nil {
		a.logger.Debug().Err(err).Msg("department analytics unavailable")
	} else if m != nil {
		out.ByDepartment = m
	}
	if top, err := a.api.TopIssues(ctx); err != nil {
		a.logger.Debug().Err(err).Msg("top issues unavailable")
	} else if top != nil {
		out.TopIssues = top
	}
	return out
}

// Staff lists staff at station, or at every station when station is empty.
func (a *Admin) Staff(ctx context.Context, station string) ([]repo.User, error) {
	return a.api.Staff(ctx, station)
}
