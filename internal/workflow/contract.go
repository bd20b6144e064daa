package workflow

import (
	"strings"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/role"
)

// Actor is whoever invokes a workflow operation.
type Actor struct {
	Username string
	Role     role.Role
	Station  string
}

// Op is a workflow operation on an existing complaint.
type Op string

const (
	OpStart    Op = "start"
	OpResolve  Op = "resolve"
	OpAssign   Op = "assign"
	OpRemark   Op = "remark"
	OpEscalate Op = "escalate"
)

var opActions = map[Op]access.Action{
	OpStart:    access.StartComplaint,
	OpResolve:  access.ResolveComplaint,
	OpAssign:   access.AssignComplaint,
	OpRemark:   access.RemarkComplaint,
	OpEscalate: access.EscalateComplaint,
}

// OpFor maps a transition event to its operation.
func OpFor(e Event) Op {
	if e == Start {
		return OpStart
	}
	return OpResolve
}

// InScope reports whether the complaint is within the actor's write scope:
// staff see what is assigned to them, station masters their station, admins
// everything.
func InScope(a Actor, c Complaint) bool {
	switch a.Role {
	case role.RPFAdmin, role.SuperAdmin:
		return true
	case role.StationMaster:
		return c.AtStation(a.Station)
	case role.StationStaff:
		return c.IsAssignedTo(a.Username)
	}
	return false
}

// Authorize checks the role table and the complaint scope for op.
func Authorize(a Actor, op Op, c Complaint) error {
	action, ok := opActions[op]
	if !ok {
		return apperr.Forbidden("unknown operation %q", op)
	}
	if err := access.Require(a.Role, action); err != nil {
		return err
	}
	if !InScope(a, c) {
		return apperr.Forbidden("complaint #%d is outside your scope", c.ID)
	}
	return nil
}

// Transition authorizes and computes the status change for e. changed is
// false for idempotent repeats.
func Transition(a Actor, c Complaint, e Event) (Status, bool, error) {
	if err := Authorize(a, OpFor(e), c); err != nil {
		return c.Status, false, err
	}
	to, changed, err := Next(c.Status, e)
	if err != nil {
		return c.Status, false, &apperr.Error{Kind: apperr.ErrValidation, Message: err.Error(), Err: err}
	}
	return to, changed, nil
}

// CheckAssign validates an assignment. Assignment never changes status.
func CheckAssign(a Actor, c Complaint, assignee string) error {
	if strings.TrimSpace(assignee) == "" {
		return apperr.Validation("Choose a staff member to assign")
	}
	if err := Authorize(a, OpAssign, c); err != nil {
		return err
	}
	if c.Status.Terminal() {
		return apperr.Validation("Complaint #%d is already resolved", c.ID)
	}
	return nil
}

// CheckRemark validates a remark; remarks are allowed in every status.
func CheckRemark(a Actor, c Complaint, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperr.Validation("Remarks cannot be empty")
	}
	return Authorize(a, OpRemark, c)
}

// CheckEscalate validates a hand-off to RPF. Escalation is a flag kept next
// to the status, never a status of its own; escalating twice is a no-op.
func CheckEscalate(a Actor, c Complaint) (changed bool, err error) {
	if err := Authorize(a, OpEscalate, c); err != nil {
		return false, err
	}
	if c.Status.Terminal() {
		return false, apperr.Validation("Complaint #%d is already resolved", c.ID)
	}
	return !c.Escalated, nil
}
