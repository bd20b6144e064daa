package service

import (
	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/auth"
	"github.com/railmadad/portal/internal/role"
	"github.com/railmadad/portal/internal/workflow"
)

// ActorFromClaims turns validated token claims into a workflow actor. Tokens
// for station roles without a station are refused.
func ActorFromClaims(c *auth.Claims) (workflow.Actor, error) {
	if c == nil {
		return workflow.Actor{}, &apperr.Error{Kind: apperr.ErrAuth, Message: "Missing credentials"}
	}
	r, err := role.Parse(c.Role)
	if err != nil {
		return workflow.Actor{}, &apperr.Error{Kind: apperr.ErrAuth, Message: "Token carries an unknown role", Err: err}
	}
	if r.RequiresStation() && c.Station == "" {
		return workflow.Actor{}, apperr.Forbidden("%s account has no station", r.Label())
	}
	return workflow.Actor{Username: c.Subject, Role: r, Station: c.Station}, nil
}
