package http

import (
	"net/http"

	"github.com/railmadad/portal/internal/feedback"
	"github.com/railmadad/portal/internal/repo"
)

func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var in feedback.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	n, err := h.svc.Feedback.Feedback(r.Context(), actorOf(r), in)
	h.writeNote(w, r, n, err)
}

func (h *Handler) SubmitSuggestion(w http.ResponseWriter, r *http.Request) {
	var in feedback.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	n, err := h.svc.Feedback.Suggest(r.Context(), actorOf(r), in)
	h.writeNote(w, r, n, err)
}

func (h *Handler) writeNote(w http.ResponseWriter, r *http.Request, n repo.Note, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, n)
}

// ListNotes serves GET /feedback and GET /suggestion.
func (h *Handler) ListNotes(kind repo.NoteKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.svc.Feedback.List(r.Context(), actorOf(r), kind)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if list == nil {
			list = []repo.Note{}
		}
		WriteJSON(w, http.StatusOK, list)
	}
}

// TrackComplaint is the public status lookup by reference number.
func (h *Handler) TrackComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Complaints.Track(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}
