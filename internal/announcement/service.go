package announcement

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/sanitize"
	"github.com/railmadad/portal/internal/util"
	"github.com/railmadad/portal/internal/workflow"
)

const maxMessageLength = 1000

// Store is what the service persists to; *Repository implements it.
type Store interface {
	Append(ctx context.Context, a repo.Announcement) (repo.Announcement, error)
	ListByStation(ctx context.Context, station string, limit int) ([]repo.Announcement, error)
}

// Service enforces who may post and read notices.
type Service struct {
	store Store
}

// NewService builds the service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Input is a notice as received over HTTP.
type Input struct {
	Station string `json:"station"`
	Team    string `json:"team"`
	Message string `json:"message"`
}

// Post appends a notice to the station master's own station.
func (s *Service) Post(ctx context.Context, a workflow.Actor, in Input) (repo.Announcement, error) {
	if err := access.Require(a.Role, access.PostAnnouncement); err != nil {
		return repo.Announcement{}, err
	}
	station := util.NormalizeName(in.Station)
	if station == "" {
		station = a.Station
	}
	if !strings.EqualFold(station, a.Station) {
		return repo.Announcement{}, apperr.Forbidden("You can only post announcements for %s", a.Station)
	}
	team, ok := repo.ParseTeam(in.Team)
	if !ok {
		return repo.Announcement{}, apperr.Validation("Team must be one of Cleaning, Maintenance, Security, Medical, AllStaff")
	}
	msg := sanitize.Text(in.Message)
	if msg == "" {
		return repo.Announcement{}, apperr.Validation("Announcement message cannot be empty")
	}
	if len(msg) > maxMessageLength {
		return repo.Announcement{}, apperr.Validation("Announcement must be at most %d characters", maxMessageLength)
	}

	out, err := s.store.Append(ctx, repo.Announcement{Station: a.Station, Team: team, Message: msg, CreatedBy: a.Username})
	if err != nil {
		return repo.Announcement{}, err
	}
	log.Info().Str("station", out.Station).Str("team", string(out.Team)).Msg("announcement posted")
	return out, nil
}

// List returns a station's notices. Station-level accounts only read their own.
func (s *Service) List(ctx context.Context, a workflow.Actor, station string) ([]repo.Announcement, error) {
	if err := access.Require(a.Role, access.ViewAnnouncements); err != nil {
		return nil, err
	}
	station = strings.TrimSpace(station)
	if station == "" {
		return nil, apperr.Validation("Station name is required")
	}
	if a.Role.IsStationLevel() && !strings.EqualFold(station, a.Station) {
		return nil, apperr.Forbidden("You can only read announcements of %s", a.Station)
	}
	return s.store.ListByStation(ctx, station, 50)
}
