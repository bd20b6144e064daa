package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/auth"
	"github.com/railmadad/portal/internal/service"
	"github.com/railmadad/portal/internal/workflow"
)

type contextKey string

const (
	ContextKeyClaims contextKey = "claims"
	ContextKeyActor  contextKey = "actor"
)

// Authenticator validates bearer tokens, including revocation.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// Auth validates the access token and puts the claims and the actor in the context.
func Auth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "AUTH", "Missing bearer token")
				return
			}

			claims, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, apperr.ErrAuth) {
					log.Error().Err(err).Msg("authenticate token")
					writeError(w, http.StatusInternalServerError, "INTERNAL", "Could not verify session")
					return
				}
				writeError(w, http.StatusUnauthorized, "AUTH", apperr.Message(err))
				return
			}

			actor, err := service.ActorFromClaims(claims)
			if err != nil {
				status := http.StatusUnauthorized
				code := "AUTH"
				if errors.Is(err, apperr.ErrAuthorization) {
					status, code = http.StatusForbidden, "FORBIDDEN"
				}
				writeError(w, status, code, apperr.Message(err))
				return
			}

			recordActor(r.Context(), actor)
			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			ctx = context.WithValue(ctx, ContextKeyActor, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// GetClaims returns the validated claims, or nil outside Auth.
func GetClaims(ctx context.Context) *auth.Claims {
	val, _ := ctx.Value(ContextKeyClaims).(*auth.Claims)
	return val
}

// GetActor returns the authenticated actor.
func GetActor(ctx context.Context) (workflow.Actor, bool) {
	val, ok := ctx.Value(ContextKeyActor).(workflow.Actor)
	return val, ok
}

// GetSubject returns the token subject.
func GetSubject(ctx context.Context) string {
	if a, ok := GetActor(ctx); ok {
		return a.Username
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
