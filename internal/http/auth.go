package http

import (
	"net/http"
	"strings"

	httpmiddleware "github.com/railmadad/portal/internal/http/middleware"
	"github.com/railmadad/portal/internal/service"
)

// Login authenticates by email (or username) and password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	login := strings.TrimSpace(payload.Email)
	if login == "" {
		login = strings.TrimSpace(payload.Username)
	}
	result, err := h.svc.Auth.Login(r.Context(), login, payload.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// Signup registers a passenger or an official.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if !decodeJSON(w, r, &in) {
		return
	}
	user, err := h.svc.Auth.Signup(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, user)
}

// Logout revokes the caller's token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Auth.Logout(r.Context(), httpmiddleware.GetClaims(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me echoes the authenticated identity.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := httpmiddleware.GetClaims(r.Context())
	actor, _ := httpmiddleware.GetActor(r.Context())
	WriteJSON(w, http.StatusOK, map[string]any{
		"username":    actor.Username,
		"role":        actor.Role,
		"stationName": actor.Station,
		"fullName":    claims.Name,
		"expiresAt":   claims.ExpiresAt,
	})
}
