package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/railmadad/portal/internal/announcement"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/service"
)

func (h *Handler) EmergencyContacts(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, repo.EmergencyContacts)
}

func (h *Handler) Helpline(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, repo.DefaultHelpline)
}

func (h *Handler) PostAnnouncement(w http.ResponseWriter, r *http.Request) {
	var in announcement.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	a, err := h.svc.Announcements.Post(r.Context(), actorOf(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) StationAnnouncements(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Announcements.List(r.Context(), actorOf(r), chi.URLParam(r, "station"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []repo.Announcement{}
	}
	WriteJSON(w, http.StatusOK, list)
}

// Staff lists the staff roster; ?station= narrows it for admins.
func (h *Handler) Staff(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Users.Staff(r.Context(), actorOf(r), r.URL.Query().Get("station"))
	writeUsers(w, r, list, err)
}

func writeUsers(w http.ResponseWriter, r *http.Request, list []repo.User, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []repo.User{}
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Users.List(r.Context(), actorOf(r))
	writeUsers(w, r, list, err)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in service.NewUserInput
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := h.svc.Users.Create(r.Context(), actorOf(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, u)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in service.UpdateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := h.svc.Users.Update(r.Context(), actorOf(r), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.Users.Delete(r.Context(), actorOf(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Users.Stats(r.Context(), actorOf(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
