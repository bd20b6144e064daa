// Package dashboard holds the role view-models. Each is built from an explicit
// session and backend and keeps its complaints on a workflow.Board, so a
// response is only ever applied to the view that asked for it.
package dashboard

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/gateway"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/session"
	"github.com/railmadad/portal/internal/workflow"
)

// Backend is the part of the API the dashboards use; *gateway.Client
// implements it.
type Backend interface {
	Complaints(ctx context.Context) ([]workflow.Complaint, error)
	MyComplaints(ctx context.Context) ([]workflow.Complaint, error)
	StationComplaints(ctx context.Context, station string) ([]workflow.Complaint, error)
	AssignedTo(ctx context.Context, username string) ([]workflow.Complaint, error)
	EscalatedComplaints(ctx context.Context) ([]workflow.Complaint, error)
	SubmitComplaint(ctx context.Context, n gateway.NewComplaint) (workflow.Complaint, error)
	UpdateStatus(ctx context.Context, id int64, status workflow.Status) (workflow.Complaint, error)
	AddRemarks(ctx context.Context, id int64, remarks string) (workflow.Complaint, error)
	Assign(ctx context.Context, id int64, staffName, remarks string) (workflow.Complaint, error)
	Escalate(ctx context.Context, id int64) (workflow.Complaint, error)
	ByDepartment(ctx context.Context) (map[string]int64, error)
	TopIssues(ctx context.Context) ([]string, error)
	EmergencyContacts(ctx context.Context) ([]repo.Contact, error)
	Helpline(ctx context.Context) (repo.Helpline, error)
	Announcements(ctx context.Context, station string) ([]repo.Announcement, error)
	PostAnnouncement(ctx context.Context, n gateway.NewAnnouncement) (repo.Announcement, error)
	Users(ctx context.Context) ([]repo.User, error)
	CreateUser(ctx context.Context, u gateway.NewUser) (repo.User, error)
	UpdateUser(ctx context.Context, id int64, upd gateway.UserUpdate) (repo.User, error)
	DeleteUser(ctx context.Context, id int64) error
	Stats(ctx context.Context) (repo.Stats, error)
	Staff(ctx context.Context, station string) ([]repo.User, error)
}

var _ Backend = (*gateway.Client)(nil)

// view is the state every dashboard shares.
type view struct {
	sess   session.Session
	api    Backend
	board  *workflow.Board
	actor  workflow.Actor
	logger zerolog.Logger
}

func newView(sess *session.Session, api Backend, landing access.View, name string) (view, error) {
	if sess == nil {
		return view{}, &apperr.Error{Kind: apperr.ErrAuth, Message: "Please sign in to continue."}
	}
	if api == nil {
		return view{}, apperr.Validation("dashboard %s needs a backend", name)
	}
	if !access.Resolve(sess).Allows(landing) {
		return view{}, apperr.Forbidden("%s accounts cannot open the %s", sess.Role.Label(), name)
	}
	return view{
		sess:   *sess,
		api:    api,
		board:  workflow.NewBoard(),
		actor:  workflow.Actor{Username: sess.Username, Role: sess.Role, Station: sess.Station},
		logger: log.With().Str("component", "dashboard").Str("view", name).Logger(),
	}, nil
}

// Session is the identity the view was opened with.
func (v *view) Session() session.Session {
	return v.sess
}

// Complaints returns the board in display order.
func (v *view) Complaints() []workflow.Complaint {
	return v.board.Items()
}

// Complaint returns the local copy of one complaint.
func (v *view) Complaint(id int64) (workflow.Complaint, bool) {
	return v.board.Get(id)
}

// Counts tallies the board per status.
func (v *view) Counts() map[workflow.Status]int {
	return v.board.Counts()
}

// Close abandons the view. Requests still in flight are discarded when they land.
func (v *view) Close() {
	v.board.Close()
}

func (v *view) load(ctx context.Context, fetch func(context.Context) ([]workflow.Complaint, error)) error {
	ticket := v.board.BeginLoad()
	list, err := fetch(ctx)
	if err != nil {
		v.logger.Warn().Err(err).Msg("load failed")
		return err
	}
	if !v.board.FinishLoad(ticket, list) {
		v.logger.Debug().Msg("stale load dropped")
	}
	return nil
}

func (v *view) lookup(id int64) (workflow.Complaint, error) {
	c, ok := v.board.Get(id)
	if !ok {
		return workflow.Complaint{}, &apperr.Error{Kind: apperr.ErrNotFound, Message: "Complaint is not on this dashboard."}
	}
	return c, nil
}

// commit sends one request about complaint id and applies the server's answer.
// On failure the board keeps its previous copy.
func (v *view) commit(ctx context.Context, id int64, call func(context.Context) (workflow.Complaint, error)) (workflow.Complaint, error) {
	ticket := v.board.Issue(id)
	updated, err := call(ctx)
	if err != nil {
		v.logger.Warn().Err(err).Int64("complaint", id).Msg("update failed")
		return workflow.Complaint{}, err
	}
	v.board.Apply(ticket, updated)
	return updated, nil
}

func (v *view) transition(ctx context.Context, id int64, e workflow.Event) (workflow.Complaint, error) {
	c, err := v.lookup(id)
	if err != nil {
		return workflow.Complaint{}, err
	}
	to, changed, err := workflow.Transition(v.actor, c, e)
	if err != nil {
		return workflow.Complaint{}, err
	}
	if !changed {
		return c, nil
	}
	return v.commit(ctx, id, func(ctx context.Context) (workflow.Complaint, error) {
		return v.api.UpdateStatus(ctx, id, to)
	})
}

// Start moves a pending complaint to IN_PROGRESS.
func (v *view) Start(ctx context.Context, id int64) (workflow.Complaint, error) {
	return v.transition(ctx, id, workflow.Start)
}

// Resolve closes a complaint; resolving twice is a no-op.
func (v *view) Resolve(ctx context.Context, id int64) (workflow.Complaint, error) {
	return v.transition(ctx, id, workflow.Resolve)
}

// Remark records a note without touching the status.
func (v *view) Remark(ctx context.Context, id int64, text string) (workflow.Complaint, error) {
	c, err := v.lookup(id)
	if err != nil {
		return workflow.Complaint{}, err
	}
	if err := workflow.CheckRemark(v.actor, c, text); err != nil {
		return workflow.Complaint{}, err
	}
	return v.commit(ctx, id, func(ctx context.Context) (workflow.Complaint, error) {
		return v.api.AddRemarks(ctx, id, text)
	})
}

func (v *view) assign(ctx context.Context, id int64, staff, remarks string) (workflow.Complaint, error) {
	c, err := v.lookup(id)
	if err != nil {
		return workflow.Complaint{}, err
	}
	if err := workflow.CheckAssign(v.actor, c, staff); err != nil {
		return workflow.Complaint{}, err
	}
	return v.commit(ctx, id, func(ctx context.Context) (workflow.Complaint, error) {
		return v.api.Assign(ctx, id, staff, remarks)
	})
}

func (v *view) escalate(ctx context.Context, id int64) (workflow.Complaint, error) {
	c, err := v.lookup(id)
	if err != nil {
		return workflow.Complaint{}, err
	}
	changed, err := workflow.CheckEscalate(v.actor, c)
	if err != nil {
		return workflow.Complaint{}, err
	}
	if !changed {
		return c, nil
	}
	return v.commit(ctx, id, func(ctx context.Context) (workflow.Complaint, error) {
		return v.api.Escalate(ctx, id)
	})
}

// SOS lists open complaints that are urgent or handed off to RPF, most
// urgent first.
func (v *view) SOS() []workflow.Complaint {
	return workflow.ByUrgency(v.board.Filter(workflow.Complaint.SOS))
}

// Contacts is the emergency panel. It is best effort: failures leave it empty.
type Contacts struct {
	Numbers  []repo.Contact
	Helpline *repo.Helpline
}

// Contacts loads the emergency numbers and helpline.
func (v *view) Contacts(ctx context.Context) Contacts {
	out := Contacts{Numbers: []repo.Contact{}}
	if list, err := v.api.EmergencyContacts(ctx); err != nil {
		v.logger.Debug().Err(err).Msg("emergency contacts unavailable")
	} else if list != nil {
		out.Numbers = list
	}
	if h, err := v.api.Helpline(ctx); err != nil {
		v.logger.Debug().Err(err).Msg("helpline unavailable")
	} else {
		out.Helpline = &h
	}
	return out
}
