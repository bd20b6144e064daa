package dashboard

import (
	"context"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/gateway"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/session"
)

// SuperAdmin is the user management console plus the global complaint view.
type SuperAdmin struct {
	Admin
}

// NewSuperAdmin opens the console.
func NewSuperAdmin(sess *session.Session, api Backend) (*SuperAdmin, error) {
	v, err := newView(sess, api, access.SuperAdminConsole, "super admin console")
	if err != nil {
		return nil, err
	}
	return &SuperAdmin{Admin: Admin{view: v}}, nil
}

func (s *SuperAdmin) manage() error {
	return access.Require(s.sess.Role, access.ManageUsers)
}

// Users lists every account.
func (s *SuperAdmin) Users(ctx context.Context) ([]repo.User, error) {
	if err := s.manage(); err != nil {
		return nil, err
	}
	return s.api.Users(ctx)
}

// CreateUser adds an account.
func (s *SuperAdmin) CreateUser(ctx context.Context, u gateway.NewUser) (repo.User, error) {
	if err := s.manage(); err != nil {
		return repo.User{}, err
	}
	return s.api.CreateUser(ctx, u)
}

// UpdateUser changes role or station.
func (s *SuperAdmin) UpdateUser(ctx context.Context, id int64, upd gateway.UserUpdate) (repo.User, error) {
	if err := s.manage(); err != nil {
		return repo.User{}, err
	}
	return s.api.UpdateUser(ctx, id, upd)
}

// DeleteUser removes an account.
func (s *SuperAdmin) DeleteUser(ctx context.Context, id int64) error {
	if err := s.manage(); err != nil {
		return err
	}
	return s.api.DeleteUser(ctx, id)
}

// Stats loads the console counters.
func (s *SuperAdmin) Stats(ctx context.Context) (repo.Stats, error) {
	if err := s.manage(); err != nil {
		return repo.Stats{}, err
	}
	return s.api.Stats(ctx)
}
