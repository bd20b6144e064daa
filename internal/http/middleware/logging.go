package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/railmadad/portal/internal/metrics"
	"github.com/railmadad/portal/internal/workflow"
)

const contextKeyLogActor contextKey = "log_actor"

type actorHolder struct {
	actor workflow.Actor
	set   bool
}

func loggedActor(r *http.Request) (workflow.Actor, bool) {
	h, ok := r.Context().Value(contextKeyLogActor).(*actorHolder)
	if !ok || !h.set {
		return workflow.Actor{}, false
	}
	return h.actor, true
}

func recordActor(ctx context.Context, a workflow.Actor) {
	if h, ok := ctx.Value(contextKeyLogActor).(*actorHolder); ok {
		h.actor, h.set = a, true
	}
}

// Logging writes one structured log line per request and records its latency.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(context.WithValue(r.Context(), contextKeyLogActor, &actorHolder{}))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		dur := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.RequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(dur.Seconds())

		event := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest && status != http.StatusNotFound:
			event = log.Warn()
		}
		event = event.Str("method", r.Method).Str("route", route).Str("path", r.URL.Path).
			Int("status", status).Dur("duration", dur).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("ip", realIPFromRequest(r))
		// Auth runs inside this middleware, so the actor is only visible
		// through the shared holder it fills in.
		if actor, ok := loggedActor(r); ok {
			event = event.Str("user", actor.Username).Str("role", string(actor.Role))
		}
		event.Msg("request")
	})
}
