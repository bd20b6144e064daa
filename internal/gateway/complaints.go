package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/workflow"
)

// NewComplaint is a passenger's submission.
type NewComplaint struct {
	PassengerName   string     `json:"passengerName"`
	PassengerPhone  string     `json:"passengerPhone,omitempty"`
	ComplaintText   string     `json:"complaintText"`
	Station         string     `json:"station,omitempty"`
	TrainNumber     string     `json:"trainNumber,omitempty"`
	PreviousStation string     `json:"previousStation,omitempty"`
	NextStation     string     `json:"nextStation,omitempty"`
	IncidentAt      *time.Time `json:"incidentAt,omitempty"`
}

// Validate blocks empty submissions.
func (n NewComplaint) Validate() error {
	if strings.TrimSpace(n.PassengerName) == "" {
		return apperr.Validation("Passenger name is required")
	}
	if strings.TrimSpace(n.ComplaintText) == "" {
		return apperr.Validation("Describe the problem before submitting")
	}
	return nil
}

func complaintPath(id int64, action string) string {
	return "/complaints/" + strconv.FormatInt(id, 10) + "/" + action
}

func (c *Client) list(ctx context.Context, path string) ([]workflow.Complaint, error) {
	var out []workflow.Complaint
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []workflow.Complaint{}
	}
	return out, nil
}

// Complaints lists every complaint in the caller's scope.
func (c *Client) Complaints(ctx context.Context) ([]workflow.Complaint, error) {
	return c.list(ctx, "/complaints")
}

// MyComplaints lists the caller's own submissions.
func (c *Client) MyComplaints(ctx context.Context) ([]workflow.Complaint, error) {
	return c.list(ctx, "/complaints/my")
}

// StationComplaints lists complaints filed at a station.
func (c *Client) StationComplaints(ctx context.Context, station string) ([]workflow.Complaint, error) {
	if strings.TrimSpace(station) == "" {
		return nil, apperr.Validation("Station name is required")
	}
	return c.list(ctx, "/complaints/station/"+seg(station))
}

// AssignedTo lists complaints assigned to a staff member.
func (c *Client) AssignedTo(ctx context.Context, username string) ([]workflow.Complaint, error) {
	if strings.TrimSpace(username) == "" {
		return nil, apperr.Validation("Staff username is required")
	}
	return c.list(ctx, "/complaints/assigned-to/"+seg(username))
}

// DepartmentComplaints lists complaints routed to a department.
func (c *Client) DepartmentComplaints(ctx context.Context, department string) ([]workflow.Complaint, error) {
	if strings.TrimSpace(department) == "" {
		return nil, apperr.Validation("Department is required")
	}
	return c.list(ctx, "/complaints/department/"+seg(department))
}

// EscalatedComplaints lists open complaints handed off to RPF.
func (c *Client) EscalatedComplaints(ctx context.Context) ([]workflow.Complaint, error) {
	return c.list(ctx, "/complaints/escalated")
}

// SubmitComplaint files a new complaint.
func (c *Client) SubmitComplaint(ctx context.Context, n NewComplaint) (workflow.Complaint, error) {
	if err := n.Validate(); err != nil {
		return workflow.Complaint{}, err
	}
	n.PassengerName = strings.TrimSpace(n.PassengerName)
	n.ComplaintText = strings.TrimSpace(n.ComplaintText)
	var out workflow.Complaint
	err := c.do(ctx, http.MethodPost, "/complaints", nil, n, &out)
	return out, err
}

// Track looks up the public status of a complaint. It needs no sign-in.
func (c *Client) Track(ctx context.Context, id int64) (workflow.Tracking, error) {
	if id <= 0 {
		return workflow.Tracking{}, apperr.Validation("Enter a valid reference number")
	}
	var out workflow.Tracking
	err := c.get(ctx, "/track/"+strconv.FormatInt(id, 10), &out)
	return out, err
}

// UpdateStatus moves a complaint to status.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status workflow.Status) (workflow.Complaint, error) {
	var out workflow.Complaint
	body := map[string]string{"newStatus": status.String()}
	err := c.do(ctx, http.MethodPatch, complaintPath(id, "status"), nil, body, &out)
	return out, err
}

// AddRemarks records a note on a complaint.
func (c *Client) AddRemarks(ctx context.Context, id int64, remarks string) (workflow.Complaint, error) {
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		return workflow.Complaint{}, apperr.Validation("Remarks cannot be empty")
	}
	var out workflow.Complaint
	err := c.do(ctx, http.MethodPatch, complaintPath(id, "remarks"), nil, map[string]string{"remarks": remarks}, &out)
	return out, err
}

// Assign hands a complaint to a staff member. remarks is optional.
func (c *Client) Assign(ctx context.Context, id int64, staffName, remarks string) (workflow.Complaint, error) {
	staffName = strings.TrimSpace(staffName)
	if staffName == "" {
		return workflow.Complaint{}, apperr.Validation("Choose a staff member to assign")
	}
	q := url.Values{}
	q.Set("staffName", staffName)
	if r := strings.TrimSpace(remarks); r != "" {
		q.Set("remarks", r)
	}
	var out workflow.Complaint
	err := c.do(ctx, http.MethodPatch, complaintPath(id, "assign"), q, nil, &out)
	return out, err
}

// Escalate flags a complaint for RPF review.
func (c *Client) Escalate(ctx context.Context, id int64) (workflow.Complaint, error) {
	var out workflow.Complaint
	err := c.do(ctx, http.MethodPatch, complaintPath(id, "escalate"), nil, nil, &out)
	return out, err
}

// History lists the recorded changes of a complaint, oldest first.
func (c *Client) History(ctx context.Context, id int64) ([]repo.HistoryEntry, error) {
	var out []repo.HistoryEntry
	if err := c.get(ctx, complaintPath(id, "history"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ByDepartment counts complaints per department.
func (c *Client) ByDepartment(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	if err := c.get(ctx, "/departments/analytics/by-department", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TopIssues lists the most reported departments.
func (c *Client) TopIssues(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.get(ctx, "/departments/analytics/top-issues", &out); err != nil {
		return nil, err
	}
	return out, nil
}
