package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/account"
	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/complaint"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/role"
	"github.com/railmadad/portal/internal/util"
	"github.com/railmadad/portal/internal/workflow"
)

type userRepository interface {
	accountRepository
	GetByID(ctx context.Context, id int64) (repo.User, error)
	List(ctx context.Context) ([]repo.User, error)
	ListStaff(ctx context.Context, station string) ([]repo.User, error)
	Update(ctx context.Context, id int64, in account.UpdateInput) (repo.User, error)
	Delete(ctx context.Context, id int64) error
	CountByRole(ctx context.Context) (map[string]int64, error)
}

type complaintCounter interface {
	Counts(ctx context.Context) (complaint.Counts, error)
}

// UserService holds the super admin use cases.
type UserService struct {
	repo       userRepository
	complaints complaintCounter
}

// NewUserService builds the service.
func NewUserService(r userRepository, complaints complaintCounter) *UserService {
	return &UserService{repo: r, complaints: complaints}
}

func requireManage(a workflow.Actor) error {
	return access.Require(a.Role, access.ManageUsers)
}

// List returns every account.
func (s *UserService) List(ctx context.Context, a workflow.Actor) ([]repo.User, error) {
	if err := requireManage(a); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// NewUserInput is an account created by a super admin.
type NewUserInput struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	StationName string `json:"stationName"`
}

// Create adds an account of any role.
func (s *UserService) Create(ctx context.Context, a workflow.Actor, in NewUserInput) (repo.User, error) {
	if err := requireManage(a); err != nil {
		return repo.User{}, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := util.ValidateEmail(email); err != nil {
		return repo.User{}, err
	}
	if err := util.ValidatePassword(in.Password); err != nil {
		return repo.User{}, err
	}
	r, err := role.Parse(in.Role)
	if err != nil {
		return repo.User{}, apperr.Validation("Unknown role %q", in.Role)
	}
	station := util.NormalizeName(in.StationName)
	if r.RequiresStation() && station == "" {
		return repo.User{}, apperr.Validation("Station name is required for %s accounts", r.Label())
	}
	var stationPtr *string
	if r.RequiresStation() {
		stationPtr = &station
	}
	return createAccount(ctx, s.repo, account.CreateInput{
		Username: email,
		Email:    email,
		FullName: util.DisplayName(in.FullName, email),
		Role:     r.String(),
		Station:  stationPtr,
	}, in.Password)
}

// UpdateInput changes an account's role and/or station.
type UpdateInput struct {
	Role        *string `json:"role"`
	StationName *string `json:"stationName"`
}

// Update changes role or station. The resulting account must still be
// consistent: station roles keep a station, other roles drop it.
func (s *UserService) Update(ctx context.Context, a workflow.Actor, id int64, in UpdateInput) (repo.User, error) {
	if err := requireManage(a); err != nil {
		return repo.User{}, err
	}
	if in.Role == nil && in.StationName == nil {
		return repo.User{}, apperr.Validation("Nothing to update")
	}
	current, err := s.get(ctx, id)
	if err != nil {
		return repo.User{}, err
	}

	target := role.Role(current.Role)
	upd := account.UpdateInput{}
	if in.Role != nil {
		r, err := role.Parse(*in.Role)
		if err != nil {
			return repo.User{}, apperr.Validation("Unknown role %q", *in.Role)
		}
		if strings.EqualFold(current.Email, a.Username) && r != role.SuperAdmin {
			return repo.User{}, apperr.Validation("You cannot remove your own super admin role")
		}
		target = r
		name := r.String()
		upd.Role = &name
	}

	station := workflow.Deref(current.Station)
	if in.StationName != nil {
		station = util.NormalizeName(*in.StationName)
		upd.Station = &station
	}
	switch {
	case target.RequiresStation() && station == "":
		return repo.User{}, apperr.Validation("Station name is required for %s accounts", target.Label())
	case !target.RequiresStation():
		upd.Station = nil
		upd.ClearStation = current.Station != nil
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		return repo.User{}, err
	}
	log.Info().Int64("user", id).Str("role", updated.Role).Str("by", a.Username).Msg("account updated")
	return updated, nil
}

// Delete removes an account other than the caller's own.
func (s *UserService) Delete(ctx context.Context, a workflow.Actor, id int64) error {
	if err := requireManage(a); err != nil {
		return err
	}
	current, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if strings.EqualFold(current.Email, a.Username) {
		return apperr.Validation("You cannot delete your own account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Int64("user", id).Str("by", a.Username).Msg("account deleted")
	return nil
}

func (s *UserService) get(ctx context.Context, id int64) (repo.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return repo.User{}, &apperr.Error{Kind: apperr.ErrNotFound, Message: "User not found", Err: err}
	}
	return u, err
}

// Staff lists station-level accounts: station masters get their own station,
// admins any station (or all when station is empty).
func (s *UserService) Staff(ctx context.Context, a workflow.Actor, station string) ([]repo.User, error) {
	station = strings.TrimSpace(station)
	switch {
	case a.Role == role.StationMaster:
		if station != "" && !strings.EqualFold(station, a.Station) {
			return nil, apperr.Forbidden("You can only view staff of %s", a.Station)
		}
		station = a.Station
	case a.Role.IsAdmin():
	default:
		return nil, apperr.Forbidden("%s accounts cannot view the staff roster", a.Role.Label())
	}
	return s.repo.ListStaff(ctx, station)
}

// Stats summarises accounts and complaints.
func (s *UserService) Stats(ctx context.Context, a workflow.Actor) (repo.Stats, error) {
	if err := requireManage(a); err != nil {
		return repo.Stats{}, err
	}
	byRole, err := s.repo.CountByRole(ctx)
	if err != nil {
		return repo.Stats{}, err
	}
	counts, err := s.complaints.Counts(ctx)
	if err != nil {
		return repo.Stats{}, err
	}
	out := repo.Stats{
		UsersByRole:     byRole,
		TotalComplaints: counts.Total,
		ByStatus:        counts.ByStatus,
		Escalated:       counts.Escalated,
	}
	for _, n := range byRole {
		out.TotalUsers += n
	}
	return out, nil
}
