package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/railmadad/portal/internal/complaint"
	httpmiddleware "github.com/railmadad/portal/internal/http/middleware"
	"github.com/railmadad/portal/internal/workflow"
)

func actorOf(r *http.Request) workflow.Actor {
	a, _ := httpmiddleware.GetActor(r.Context())
	return a
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "Invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, list []workflow.Complaint, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []workflow.Complaint{}
	}
	WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) writeOne(w http.ResponseWriter, r *http.Request, status int, c workflow.Complaint, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, status, c)
}

// ListComplaints lists whatever the caller's role may see.
func (h *Handler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Complaints.List(r.Context(), actorOf(r))
	h.writeList(w, r, list, err)
}

// MyComplaints lists the caller's own complaints.
func (h *Handler) MyComplaints(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Complaints.Mine(r.Context(), actorOf(r))
	h.writeList(w, r, list, err)
}

func (h *Handler) StationComplaints(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Complaints.ByStation(r.Context(), actorOf(r), chi.URLParam(r, "station"))
	h.writeList(w, r, list, err)
}

func (h *Handler) AssignedComplaints(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Complaints.AssignedTo(r.Context(), actorOf(r), chi.URLParam(r, "username"))
	h.writeList(w, r, list, err)
}

func (h *Handler) DepartmentComplaints(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Complaints.ByDepartment(r.Context(), actorOf(r), chi.URLParam(r, "department"))
	h.writeList(w, r, list, err)
}

func (h *Handler) EscalatedComplaints(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Complaints.Escalated(r.Context(), actorOf(r))
	h.writeList(w, r, list, err)
}

// CreateComplaint files a complaint for the caller.
func (h *Handler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	var in complaint.NewComplaint
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.svc.Complaints.Create(r.Context(), actorOf(r), in)
	h.writeOne(w, r, http.StatusCreated, c, err)
}

func (h *Handler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Complaints.Get(r.Context(), actorOf(r), id)
	h.writeOne(w, r, http.StatusOK, c, err)
}

func (h *Handler) ComplaintHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	entries, err := h.svc.Complaints.History(r.Context(), actorOf(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, entries)
}

// UpdateStatus takes {"newStatus": "..."}.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var payload struct {
		NewStatus string `json:"newStatus"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	c, err := h.svc.Complaints.UpdateStatus(r.Context(), actorOf(r), id, payload.NewStatus)
	h.writeOne(w, r, http.StatusOK, c, err)
}

func (h *Handler) AddRemarks(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var payload struct {
		Remarks string `json:"remarks"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	c, err := h.svc.Complaints.AddRemarks(r.Context(), actorOf(r), id, payload.Remarks)
	h.writeOne(w, r, http.StatusOK, c, err)
}

// AssignComplaint reads staffName and remarks from the query string.
func (h *Handler) AssignComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	c, err := h.svc.Complaints.Assign(r.Context(), actorOf(r), id, q.Get("staffName"), q.Get("remarks"))
	h.writeOne(w, r, http.StatusOK, c, err)
}

func (h *Handler) EscalateComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Complaints.Escalate(r.Context(), actorOf(r), id)
	h.writeOne(w, r, http.StatusOK, c, err)
}

func (h *Handler) ByDepartment(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Complaints.CountByDepartment(r.Context(), actorOf(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, counts)
}

func (h *Handler) TopIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.svc.Complaints.TopIssues(r.Context(), actorOf(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if issues == nil {
		issues = []string{}
	}
	WriteJSON(w, http.StatusOK, issues)
}
