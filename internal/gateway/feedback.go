package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/repo"
)

// NewNote is feedback or a suggestion. Type only applies to feedback.
type NewNote struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

func (c *Client) note(ctx context.Context, path string, n NewNote) (repo.Note, error) {
	n.Message = strings.TrimSpace(n.Message)
	if n.Message == "" {
		return repo.Note{}, apperr.Validation("Message cannot be empty")
	}
	var out repo.Note
	err := c.do(ctx, http.MethodPost, path, nil, n, &out)
	return out, err
}

func (c *Client) notes(ctx context.Context, path string) ([]repo.Note, error) {
	out := []repo.Note{}
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitFeedback sends feedback; a blank type means General.
func (c *Client) SubmitFeedback(ctx context.Context, n NewNote) (repo.Note, error) {
	if _, ok := repo.ParseCategory(n.Type); !ok {
		return repo.Note{}, apperr.Validation("Feedback type must be one of %s", strings.Join(repo.Categories, ", "))
	}
	return c.note(ctx, "/feedback", n)
}

// SubmitSuggestion sends an improvement suggestion.
func (c *Client) SubmitSuggestion(ctx context.Context, message string) (repo.Note, error) {
	return c.note(ctx, "/suggestion", NewNote{Message: message})
}

// Feedback lists received feedback, newest first.
func (c *Client) Feedback(ctx context.Context) ([]repo.Note, error) {
	return c.notes(ctx, "/feedback")
}

// Suggestions lists received suggestions, newest first.
func (c *Client) Suggestions(ctx context.Context) ([]repo.Note, error) {
	return c.notes(ctx, "/suggestion")
}
