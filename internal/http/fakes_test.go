package http

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/railmadad/portal/internal/account"
	"github.com/railmadad/portal/internal/complaint"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/workflow"
)

type memAccounts struct {
	mu    sync.Mutex
	users []repo.User
}

func (m *memAccounts) GetByLogin(_ context.Context, login string) (repo.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, login) || strings.EqualFold(u.Username, login) {
			return u, nil
		}
	}
	return repo.User{}, repo.ErrNotFound
}

func (m *memAccounts) GetByID(_ context.Context, id int64) (repo.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return repo.User{}, repo.ErrNotFound
}

func (m *memAccounts) Create(_ context.Context, in account.CreateInput) (repo.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, in.Email) {
			return repo.User{}, repo.ErrConflict
		}
	}
	id := int64(len(m.users) + 1)
	u := repo.User{ID: id, Username: in.Username, Email: in.Email, FullName: in.FullName, Role: in.Role,
		Station: in.Station, PasswordHash: in.PasswordHash, UserCode: repo.UserCode(id), CreatedAt: time.Now()}
	m.users = append(m.users, u)
	return u, nil
}

func (m *memAccounts) List(context.Context) ([]repo.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repo.User(nil), m.users...), nil
}

func (m *memAccounts) ListStaff(_ context.Context, station string) ([]repo.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repo.User
	for _, u := range m.users {
		if u.Role == "STATION_STAFF" && (station == "" || strings.EqualFold(workflow.Deref(u.Station), station)) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memAccounts) Update(_ context.Context, id int64, in account.UpdateInput) (repo.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.users {
		if u.ID != id {
			continue
		}
		if in.Role != nil {
			u.Role = *in.Role
		}
		if in.ClearStation {
			u.Station = nil
		} else if in.Station != nil {
			u.Station = in.Station
		}
		m.users[i] = u
		return u, nil
	}
	return repo.User{}, repo.ErrNotFound
}

func (m *memAccounts) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.users {
		if u.ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memAccounts) CountByRole(context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int64{}
	for _, u := range m.users {
		out[u.Role]++
	}
	return out, nil
}

type memRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = "1"
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *memRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func (m *memRedis) Expire(context.Context, string, time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

type memComplaints struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]workflow.Complaint
	history []repo.HistoryEntry
}

func newMemComplaints() *memComplaints {
	return &memComplaints{nextID: 101, rows: map[int64]workflow.Complaint{}}
}

func (m *memComplaints) Create(_ context.Context, in complaint.CreateInput) (workflow.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	score := in.Score
	c := workflow.Complaint{
		ID:              m.nextID,
		PassengerName:   in.PassengerName,
		PassengerPhone:  in.Phone,
		ComplaintText:   in.Text,
		Status:          workflow.Pending,
		Department:      workflow.Str(in.Department),
		Station:         in.Station,
		TrainNumber:     in.Train,
		PreviousStation: in.PreviousStation,
		NextStation:     in.NextStation,
		IncidentAt:      in.IncidentAt,
		UrgencyScore:    &score,
		CreatedBy:       workflow.Str(in.CreatedBy),
		CreatedAt:       time.Now(),
	}
	m.nextID++
	m.rows[c.ID] = c
	m.history = append(m.history, repo.HistoryEntry{ComplaintID: c.ID, NewStatus: c.Status.String(), UpdatedBy: in.CreatedBy})
	return c, nil
}

func (m *memComplaints) Get(_ context.Context, id int64) (workflow.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return workflow.Complaint{}, complaint.ErrNotFound
	}
	return c, nil
}

func match(p *string, v string) bool {
	return v == "" || (p != nil && strings.EqualFold(*p, v))
}

func (m *memComplaints) List(_ context.Context, f complaint.Filter) ([]workflow.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []workflow.Complaint{}
	for _, c := range m.rows {
		if !match(c.CreatedBy, f.CreatedBy) || !match(c.Station, f.Station) ||
			!match(c.AssignedTo, f.AssignedTo) || !match(c.Department, f.Department) {
			continue
		}
		if (f.Escalated && !c.Escalated) || (f.OpenOnly && c.Status == workflow.Resolved) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memComplaints) Update(_ context.Context, id int64, ch complaint.Change, h complaint.HistoryInput) (workflow.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return workflow.Complaint{}, complaint.ErrNotFound
	}
	if ch.Expect != "" && c.Status != ch.Expect {
		return workflow.Complaint{}, complaint.ErrStale
	}
	if ch.Status != nil {
		c.Status = *ch.Status
	}
	if ch.ResolvedBy != nil {
		c.ResolvedBy = ch.ResolvedBy
	}
	if ch.AssignedTo != nil {
		c.AssignedTo = ch.AssignedTo
	}
	if ch.Remarks != nil {
		c.Remarks = ch.Remarks
	}
	if ch.EscalatedBy != nil {
		c.Escalated, c.EscalatedBy, c.EscalatedAt = true, ch.EscalatedBy, ch.EscalatedAt
	}
	m.rows[id] = c
	m.history = append(m.history, repo.HistoryEntry{ComplaintID: id, NewStatus: h.NewStatus.String(), Note: h.Note, UpdatedBy: h.UpdatedBy})
	return c, nil
}

func (m *memComplaints) History(_ context.Context, id int64) ([]repo.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []repo.HistoryEntry{}
	for _, h := range m.history {
		if h.ComplaintID == id {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memComplaints) Counts(context.Context) (complaint.Counts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := complaint.Counts{ByDepartment: map[string]int64{}, ByStatus: map[string]int64{}}
	for _, c := range m.rows {
		out.Total++
		out.ByDepartment[workflow.Deref(c.Department)]++
		out.ByStatus[c.Status.String()]++
		if c.Escalated && c.Status != workflow.Resolved {
			out.Escalated++
		}
	}
	return out, nil
}

func (m *memComplaints) TopIssues(context.Context, int) ([]string, error) {
	return nil, nil
}

type memAnnouncements struct {
	mu  sync.Mutex
	log []repo.Announcement
}

func (m *memAnnouncements) Append(_ context.Context, a repo.Announcement) (repo.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = int64(len(m.log) + 1)
	a.CreatedAt = time.Now()
	m.log = append(m.log, a)
	return a, nil
}

func (m *memAnnouncements) ListByStation(_ context.Context, station string, _ int) ([]repo.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repo.Announcement
	for _, a := range m.log {
		if strings.EqualFold(a.Station, station) {
			out = append(out, a)
		}
	}
	return out, nil
}

type memNotes struct {
	mu  sync.Mutex
	log []repo.Note
}

func (m *memNotes) Append(_ context.Context, n repo.Note) (repo.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = int64(len(m.log) + 1)
	n.CreatedAt = time.Now()
	m.log = append(m.log, n)
	return n, nil
}

func (m *memNotes) List(_ context.Context, kind repo.NoteKind, _ int) ([]repo.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repo.Note
	for _, n := range m.log {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out, nil
}
