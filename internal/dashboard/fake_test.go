package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/gateway"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/urgency"
	"github.com/railmadad/portal/internal/workflow"
)

// fakeBackend keeps complaints in memory the way the server would.
type fakeBackend struct {
	mu         sync.Mutex
	nextID     int64
	complaints map[int64]workflow.Complaint
	calls      map[string]int
	fail       map[string]error
	before     func(op string)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nextID:     101,
		complaints: map[int64]workflow.Complaint{},
		calls:      map[string]int{},
		fail:       map[string]error{},
	}
}

func (f *fakeBackend) enter(op string) error {
	f.mu.Lock()
	f.calls[op]++
	err := f.fail[op]
	hook := f.before
	f.mu.Unlock()
	if hook != nil {
		hook(op)
	}
	return err
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) seed(c workflow.Complaint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.complaints[c.ID] = c
}

func (f *fakeBackend) filter(keep func(workflow.Complaint) bool) []workflow.Complaint {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []workflow.Complaint{}
	for _, c := range f.complaints {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeBackend) update(id int64, fn func(*workflow.Complaint)) (workflow.Complaint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.complaints[id]
	if !ok {
		return workflow.Complaint{}, &apperr.Error{Kind: apperr.ErrNotFound, Status: 404}
	}
	fn(&c)
	now := time.Now()
	c.UpdatedAt = &now
	f.complaints[id] = c
	return c, nil
}

func (f *fakeBackend) Complaints(ctx context.Context) ([]workflow.Complaint, error) {
	if err := f.enter("Complaints"); err != nil {
		return nil, err
	}
	return f.filter(func(workflow.Complaint) bool { return true }), nil
}

func (f *fakeBackend) MyComplaints(ctx context.Context) ([]workflow.Complaint, error) {
	if err := f.enter("MyComplaints"); err != nil {
		return nil, err
	}
	return f.filter(func(workflow.Complaint) bool { return true }), nil
}

func (f *fakeBackend) StationComplaints(ctx context.Context, station string) ([]workflow.Complaint, error) {
	if err := f.enter("StationComplaints"); err != nil {
		return nil, err
	}
	return f.filter(func(c workflow.Complaint) bool { return c.AtStation(station) }), nil
}

func (f *fakeBackend) AssignedTo(ctx context.Context, username string) ([]workflow.Complaint, error) {
	if err := f.enter("AssignedTo"); err != nil {
		return nil, err
	}
	return f.filter(func(c workflow.Complaint) bool { return c.IsAssignedTo(username) }), nil
}

func (f *fakeBackend) EscalatedComplaints(ctx context.Context) ([]workflow.Complaint, error) {
	if err := f.enter("EscalatedComplaints"); err != nil {
		return nil, err
	}
	return f.filter(func(c workflow.Complaint) bool { return c.Escalated }), nil
}

func (f *fakeBackend) SubmitComplaint(ctx context.Context, n gateway.NewComplaint) (workflow.Complaint, error) {
	if err := f.enter("SubmitComplaint"); err != nil {
		return workflow.Complaint{}, err
	}
	a := urgency.Assess(n.ComplaintText)
	f.mu.Lock()
	defer f.mu.Unlock()
	c := workflow.Complaint{
		ID:            f.nextID,
		PassengerName: n.PassengerName,
		ComplaintText: n.ComplaintText,
		Status:        workflow.Pending,
		Department:    workflow.Str(a.Department),
		Station:       workflow.Str(n.Station),
		UrgencyScore:  &a.Score,
		CreatedAt:     time.Now(),
	}
	f.nextID++
	f.complaints[c.ID] = c
	return c, nil
}

func (f *fakeBackend) UpdateStatus(ctx context.Context, id int64, status workflow.Status) (workflow.Complaint, error) {
	if err := f.enter("UpdateStatus"); err != nil {
		return workflow.Complaint{}, err
	}
	return f.update(id, func(c *workflow.Complaint) { c.Status = status })
}

func (f *fakeBackend) AddRemarks(ctx context.Context, id int64, remarks string) (workflow.Complaint, error) {
	if err := f.enter("AddRemarks"); err != nil {
		return workflow.Complaint{}, err
	}
	return f.update(id, func(c *workflow.Complaint) { c.Remarks = workflow.Str(remarks) })
}

func (f *fakeBackend) Assign(ctx context.Context, id int64, staffName, remarks string) (workflow.Complaint, error) {
	if err := f.enter("Assign"); err != nil {
		return workflow.Complaint{}, err
	}
	return f.update(id, func(c *workflow.Complaint) {
		c.AssignedTo = workflow.Str(staffName)
		if remarks != "" {
			c.Remarks = workflow.Str(remarks)
		}
	})
}

func (f *fakeBackend) Escalate(ctx context.Context, id int64) (workflow.Complaint, error) {
	if err := f.enter("Escalate"); err != nil {
		return workflow.Complaint{}, err
	}
	return f.update(id, func(c *workflow.Complaint) { c.Escalated = true })
}

func (f *fakeBackend) ByDepartment(ctx context.Context) (map[string]int64, error) {
	if err := f.enter("ByDepartment"); err != nil {
		return nil, err
	}
	out := map[string]int64{}
	for _, c := range f.filter(func(workflow.Complaint) bool { return true }) {
		out[workflow.Deref(c.Department)]++
	}
	return out, nil
}

func (f *fakeBackend) TopIssues(ctx context.Context) ([]string, error) {
	if err := f.enter("TopIssues"); err != nil {
		return nil, err
	}
	return []string{"Water"}, nil
}

func (f *fakeBackend) EmergencyContacts(ctx context.Context) ([]repo.Contact, error) {
	if err := f.enter("EmergencyContacts"); err != nil {
		return nil, err
	}
	return repo.EmergencyContacts, nil
}

func (f *fakeBackend) Helpline(ctx context.Context) (repo.Helpline, error) {
	if err := f.enter("Helpline"); err != nil {
		return repo.Helpline{}, err
	}
	return repo.DefaultHelpline, nil
}

func (f *fakeBackend) Announcements(ctx context.Context, station string) ([]repo.Announcement, error) {
	if err := f.enter("Announcements"); err != nil {
		return nil, err
	}
	return []repo.Announcement{{ID: 1, Station: station, Team: repo.TeamCleaning, Message: "Clean platform 2"}}, nil
}

func (f *fakeBackend) PostAnnouncement(ctx context.Context, n gateway.NewAnnouncement) (repo.Announcement, error) {
	if err := f.enter("PostAnnouncement"); err != nil {
		return repo.Announcement{}, err
	}
	return repo.Announcement{ID: 2, Station: n.Station, Team: n.Team, Message: n.Message}, nil
}

func (f *fakeBackend) Users(ctx context.Context) ([]repo.User, error) {
	if err := f.enter("Users"); err != nil {
		return nil, err
	}
	return []repo.User{{ID: 1, Email: "root@rail.in", Role: "SUPER_ADMIN", UserCode: repo.UserCode(1)}}, nil
}

func (f *fakeBackend) CreateUser(ctx context.Context, u gateway.NewUser) (repo.User, error) {
	if err := f.enter("CreateUser"); err != nil {
		return repo.User{}, err
	}
	return repo.User{ID: 2, Email: u.Email, Role: u.Role, UserCode: repo.UserCode(2)}, nil
}

func (f *fakeBackend) UpdateUser(ctx context.Context, id int64, upd gateway.UserUpdate) (repo.User, error) {
	if err := f.enter("UpdateUser"); err != nil {
		return repo.User{}, err
	}
	return repo.User{ID: id}, nil
}

func (f *fakeBackend) DeleteUser(ctx context.Context, id int64) error {
	return f.enter("DeleteUser")
}

func (f *fakeBackend) Stats(ctx context.Context) (repo.Stats, error) {
	if err := f.enter("Stats"); err != nil {
		return repo.Stats{}, err
	}
	return repo.Stats{TotalUsers: 1}, nil
}

func (f *fakeBackend) Staff(ctx context.Context, station string) ([]repo.User, error) {
	if err := f.enter("Staff"); err != nil {
		return nil, err
	}
	pune, nagpur := "Pune", "Nagpur"
	all := []repo.User{
		{ID: 3, Email: "ravi@rail.in", Role: "STATION_STAFF", Station: &pune},
		{ID: 4, Email: "anil@rail.in", Role: "STATION_STAFF", Station: &nagpur},
	}
	if station == "" {
		return all, nil
	}
	var out []repo.User
	for _, u := range all {
		if *u.Station == station {
			out = append(out, u)
		}
	}
	return out, nil
}

var errDown = &apperr.Error{Kind: apperr.ErrNetwork, Err: errors.New("connection refused")}
