package dashboard

import (
	"context"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/gateway"
	"github.com/railmadad/portal/internal/session"
	"github.com/railmadad/portal/internal/workflow"
)

// Passenger lists the passenger's own complaints and files new ones.
type Passenger struct {
	view
}

// NewPassenger opens the passenger home.
func NewPassenger(sess *session.Session, api Backend) (*Passenger, error) {
	v, err := newView(sess, api, access.PassengerHome, "passenger dashboard")
	if err != nil {
		return nil, err
	}
	return &Passenger{view: v}, nil
}

// Load fetches the passenger's complaints.
func (p *Passenger) Load(ctx context.Context) error {
	return p.load(ctx, p.api.MyComplaints)
}

// Submit files n under the passenger's own name unless n names someone.
func (p *Passenger) Submit(ctx context.Context, n gateway.NewComplaint) (workflow.Complaint, error) {
	if n.PassengerName == "" {
		n.PassengerName = p.sess.DisplayName
	}
	if err := n.Validate(); err != nil {
		return workflow.Complaint{}, err
	}
	created, err := p.api.SubmitComplaint(ctx, n)
	if err != nil {
		return workflow.Complaint{}, err
	}
	p.board.Put(created)
	p.logger.Info().Int64("complaint", created.ID).Msg("complaint submitted")
	return created, nil
}
