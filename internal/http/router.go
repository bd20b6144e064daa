package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/account"
	"github.com/railmadad/portal/internal/announcement"
	"github.com/railmadad/portal/internal/complaint"
	"github.com/railmadad/portal/internal/config"
	"github.com/railmadad/portal/internal/feedback"
	httpmiddleware "github.com/railmadad/portal/internal/http/middleware"
	"github.com/railmadad/portal/internal/metrics"
	"github.com/railmadad/portal/internal/notify"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/service"
	"github.com/railmadad/portal/internal/urgency"
)

// Services are the use cases the handlers call.
type Services struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Complaints    *complaint.Service
	Announcements *announcement.Service
	Feedback      *feedback.Service
	// Ready reports whether the backing stores answer; nil means always ready.
	Ready func(ctx context.Context) error
}

type Handler struct {
	cfg           *config.Config
	svc           Services
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter wires repositories and services over pool and redis and returns
// the API handler.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService) http.Handler {
	accounts := account.NewRepository(pool)
	complaints := complaint.NewService(
		complaint.NewRepository(pool),
		urgency.NewRemote(cfg.AIClassifierURL, log.With().Str("component", "classifier").Logger()),
		notify.New(cfg.EscalationWebhookURL),
	)

	return Routes(cfg, Services{
		Auth:          authService,
		Users:         service.NewUserService(accounts, complaints),
		Complaints:    complaints,
		Announcements: announcement.NewService(announcement.NewRepository(pool)),
		Feedback:      feedback.NewService(feedback.NewRepository(pool)),
		Ready: func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return err
			}
			return redisClient.Ping(ctx).Err()
		},
	})
}

// Routes mounts every endpoint on a chi router.
func Routes(cfg *config.Config, svc Services) http.Handler {
	h := &Handler{
		cfg:           cfg,
		svc:           svc,
		publicLimiter: httpmiddleware.NewRateLimiter("public", cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter("auth", cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/emergency-contacts", h.EmergencyContacts)
		public.Get("/helpline", h.Helpline)
		public.Get("/track/{id}", h.TrackComplaint)

		public.Route("/auth", func(a chi.Router) {
			a.With(httpmiddleware.IPRateLimit(h.authLimiter)).Post("/login", h.Login)
			a.With(httpmiddleware.IPRateLimit(h.authLimiter)).Post("/signup", h.Signup)
			a.With(httpmiddleware.Auth(svc.Auth)).Post("/logout", h.Logout)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(svc.Auth))
		private.Use(httpmiddleware.UserRateLimit(h.publicLimiter))

		private.Get("/me", h.Me)

		private.Route("/complaints", func(c chi.Router) {
			c.Get("/", h.ListComplaints)
			c.With(httpmiddleware.RequireAction(access.SubmitComplaint)).Post("/", h.CreateComplaint)
			c.Get("/my", h.MyComplaints)
			c.With(httpmiddleware.RequireAction(access.ViewStationComplaints)).Get("/station/{station}", h.StationComplaints)
			c.With(httpmiddleware.RequireAction(access.ViewAssignedComplaints)).Get("/assigned-to/{username}", h.AssignedComplaints)
			c.With(httpmiddleware.RequireAction(access.ViewAllComplaints)).Get("/department/{department}", h.DepartmentComplaints)
			c.With(httpmiddleware.RequireAction(access.ViewEscalated)).Get("/escalated", h.EscalatedComplaints)

			c.Route("/{id}", func(one chi.Router) {
				one.Get("/", h.GetComplaint)
				one.Get("/history", h.ComplaintHistory)
				one.With(httpmiddleware.RequireAction(access.StartComplaint, access.ResolveComplaint)).Patch("/status", h.UpdateStatus)
				one.With(httpmiddleware.RequireAction(access.RemarkComplaint)).Patch("/remarks", h.AddRemarks)
				one.With(httpmiddleware.RequireAction(access.AssignComplaint)).Patch("/assign", h.AssignComplaint)
				one.With(httpmiddleware.RequireAction(access.EscalateComplaint)).Patch("/escalate", h.EscalateComplaint)
			})
		})

		private.Route("/departments/analytics", func(a chi.Router) {
			a.Use(httpmiddleware.RequireAction(access.ViewAnalytics))
			a.Get("/by-department", h.ByDepartment)
			a.Get("/top-issues", h.TopIssues)
		})

		private.Route("/announcements", func(a chi.Router) {
			a.With(httpmiddleware.RequireAction(access.PostAnnouncement)).Post("/", h.PostAnnouncement)
			a.With(httpmiddleware.RequireAction(access.ViewAnnouncements)).Get("/station/{station}", h.StationAnnouncements)
		})

		private.With(httpmiddleware.RequireAction(access.AssignComplaint)).Get("/staff", h.Staff)

		private.Route("/feedback", func(f chi.Router) {
			f.With(httpmiddleware.RequireAction(access.SendFeedback)).Post("/", h.SubmitFeedback)
			f.With(httpmiddleware.RequireAction(access.ReadFeedback)).Get("/", h.ListNotes(repo.KindFeedback))
		})
		private.Route("/suggestion", func(f chi.Router) {
			f.With(httpmiddleware.RequireAction(access.SendFeedback)).Post("/", h.SubmitSuggestion)
			f.With(httpmiddleware.RequireAction(access.ReadFeedback)).Get("/", h.ListNotes(repo.KindSuggestion))
		})

		private.Route("/superadmin", func(s chi.Router) {
			s.Use(httpmiddleware.RequireAction(access.ManageUsers))
			s.Get("/users", h.ListUsers)
			s.Post("/users", h.CreateUser)
			s.Patch("/users/{id}", h.UpdateUser)
			s.Delete("/users/{id}", h.DeleteUser)
			s.Get("/stats", h.Stats)
		})
	})

	return r
}

// Health answers liveness probes.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks Postgres and Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.svc.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.svc.Ready(ctx); err != nil {
			WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Dependencies unavailable")
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}
