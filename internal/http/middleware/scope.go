package middleware

import (
	"net/http"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/apperr"
)

// RequireAction rejects actors whose role may not invoke any of the actions.
// Per-complaint scope is checked by the services.
func RequireAction(actions ...access.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActor(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "AUTH", "Missing credentials")
				return
			}
			var err error
			for _, a := range actions {
				if err = access.Require(actor.Role, a); err == nil {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "FORBIDDEN", apperr.Message(err))
		})
	}
}
