package feedback

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/sanitize"
	"github.com/railmadad/portal/internal/workflow"
)

const maxMessageLength = 1000

// Store is what the service persists to; *Repository implements it.
type Store interface {
	Append(ctx context.Context, n repo.Note) (repo.Note, error)
	List(ctx context.Context, kind repo.NoteKind, limit int) ([]repo.Note, error)
}

var _ Store = (*Repository)(nil)

// Service accepts notes from any signed-in user and shows them to admins.
type Service struct {
	store Store
}

// NewService builds the service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Input is a note as received over HTTP. Type is ignored for suggestions.
type Input struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Feedback records a feedback note under the caller's username.
func (s *Service) Feedback(ctx context.Context, a workflow.Actor, in Input) (repo.Note, error) {
	category, ok := repo.ParseCategory(in.Type)
	if !ok {
		return repo.Note{}, apperr.Validation("Feedback type must be one of %s", strings.Join(repo.Categories, ", "))
	}
	return s.add(ctx, a, repo.KindFeedback, category, in.Message)
}

// Suggest records an improvement suggestion.
func (s *Service) Suggest(ctx context.Context, a workflow.Actor, in Input) (repo.Note, error) {
	return s.add(ctx, a, repo.KindSuggestion, repo.CategoryGeneral, in.Message)
}

func (s *Service) add(ctx context.Context, a workflow.Actor, kind repo.NoteKind, category, message string) (repo.Note, error) {
	if err := access.Require(a.Role, access.SendFeedback); err != nil {
		return repo.Note{}, err
	}
	msg := sanitize.Text(message)
	if msg == "" {
		return repo.Note{}, apperr.Validation("Message cannot be empty")
	}
	if len(msg) > maxMessageLength {
		return repo.Note{}, apperr.Validation("Message must be at most %d characters", maxMessageLength)
	}

	out, err := s.store.Append(ctx, repo.Note{Kind: kind, Category: category, Message: msg, UserEmail: a.Username})
	if err != nil {
		return repo.Note{}, err
	}
	log.Info().Str("kind", string(kind)).Str("type", category).Msg("note received")
	return out, nil
}

// List returns the notes of one kind for admins.
func (s *Service) List(ctx context.Context, a workflow.Actor, kind repo.NoteKind) ([]repo.Note, error) {
	if err := access.Require(a.Role, access.ReadFeedback); err != nil {
		return nil, err
	}
	return s.store.List(ctx, kind, 100)
}
