package dashboard

import (
	"context"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/session"
	"github.com/railmadad/portal/internal/workflow"
)

// Staff is the personal task list of station staff.
type Staff struct {
	view
}

// NewStaff opens the task list.
func NewStaff(sess *session.Session, api Backend) (*Staff, error) {
	v, err := newView(sess, api, access.StaffTasks, "task list")
	if err != nil {
		return nil, err
	}
	return &Staff{view: v}, nil
}

// Load fetches the complaints assigned to the signed-in user. No assignments
// is an empty list, not an error.
func (s *Staff) Load(ctx context.Context) error {
	return s.load(ctx, func(ctx context.Context) ([]workflow.Complaint, error) {
		return s.api.AssignedTo(ctx, s.sess.Username)
	})
}

// Tasks returns the open assignments.
func (s *Staff) Tasks() []workflow.Complaint {
	return s.board.Filter(func(c workflow.Complaint) bool { return c.Status != workflow.Resolved })
}

// Empty reports whether there is nothing to show.
func (s *Staff) Empty() bool {
	return s.board.Len() == 0
}

// Escalate hands a task off to RPF.
func (s *Staff) Escalate(ctx context.Context, id int64) (workflow.Complaint, error) {
	return s.escalate(ctx, id)
}

// Announcements fetches the station's notices; failures yield an empty list.
func (s *Staff) Announcements(ctx context.Context) []repo.Announcement {
	return announcements(ctx, &s.view)
}

func announcements(ctx context.Context, v *view) []repo.Announcement {
	if v.sess.Station == "" {
		return []repo.Announcement{}
	}
	list, err := v.api.Announcements(ctx, v.sess.Station)
	if err != nil || list == nil {
		if err != nil {
			v.logger.Debug().Err(err).Msg("announcements unavailable")
		}
		return []repo.Announcement{}
	}
	return list
}
