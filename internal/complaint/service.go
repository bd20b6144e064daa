package complaint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/metrics"
	"github.com/railmadad/portal/internal/notify"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/role"
	"github.com/railmadad/portal/internal/sanitize"
	"github.com/railmadad/portal/internal/urgency"
	"github.com/railmadad/portal/internal/util"
	"github.com/railmadad/portal/internal/workflow"
)

const maxTextLength = 2000

// incidentSkew tolerates clocks slightly ahead of the server.
const incidentSkew = 5 * time.Minute

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	trainPattern = regexp.MustCompile(`^[0-9]{4,5}$`)
)

// Store is the persistence the service needs; *Repository implements it.
type Store interface {
	Create(ctx context.Context, in CreateInput) (workflow.Complaint, error)
	Get(ctx context.Context, id int64) (workflow.Complaint, error)
	List(ctx context.Context, f Filter) ([]workflow.Complaint, error)
	Update(ctx context.Context, id int64, ch Change, h HistoryInput) (workflow.Complaint, error)
	History(ctx context.Context, id int64) ([]repo.HistoryEntry, error)
	Counts(ctx context.Context) (Counts, error)
	TopIssues(ctx context.Context, limit int) ([]string, error)
}

var _ Store = (*Repository)(nil)

// Service applies the workflow rules to stored complaints.
type Service struct {
	store      Store
	classifier urgency.Classifier
	notifier   notify.Notifier
	logger     zerolog.Logger
}

// NewService builds the service. A nil classifier uses the keyword rules and
// a nil notifier drops alerts.
func NewService(store Store, classifier urgency.Classifier, notifier notify.Notifier) *Service {
	if classifier == nil {
		classifier = urgency.Rules{}
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		store:      store,
		classifier: classifier,
		notifier:   notifier,
		logger:     log.With().Str("component", "complaints").Logger(),
	}
}

// NewComplaint is a submission as received over HTTP.
type NewComplaint struct {
	PassengerName   string     `json:"passengerName"`
	PassengerPhone  string     `json:"passengerPhone"`
	ComplaintText   string     `json:"complaintText"`
	Station         string     `json:"station"`
	TrainNumber     string     `json:"trainNumber"`
	PreviousStation string     `json:"previousStation"`
	NextStation     string     `json:"nextStation"`
	IncidentAt      *time.Time `json:"incidentAt"`
}

// journey validates the optional travel details of a submission. Whitespace
// and dashes inside phone and train numbers are dropped.
func journey(in NewComplaint, now time.Time) (phone, train *string, err error) {
	digits := strings.NewReplacer(" ", "", "-", "", "\t", "")
	if p := digits.Replace(sanitize.Text(in.PassengerPhone)); p != "" {
		if !phonePattern.MatchString(p) {
			return nil, nil, apperr.Validation("Phone number must be 7 to 15 digits")
		}
		phone = &p
	}
	if t := digits.Replace(sanitize.Text(in.TrainNumber)); t != "" {
		if !trainPattern.MatchString(t) {
			return nil, nil, apperr.Validation("Train number must be 4 or 5 digits")
		}
		train = &t
	}
	if in.IncidentAt != nil && in.IncidentAt.After(now.Add(incidentSkew)) {
		return nil, nil, apperr.Validation("Incident time cannot be in the future")
	}
	return phone, train, nil
}

// Create files a complaint for a passenger, classifying it on the way in.
func (s *Service) Create(ctx context.Context, a workflow.Actor, in NewComplaint) (workflow.Complaint, error) {
	if err := access.Require(a.Role, access.SubmitComplaint); err != nil {
		return workflow.Complaint{}, err
	}

	text := sanitize.Text(in.ComplaintText)
	if text == "" {
		return workflow.Complaint{}, apperr.Validation("Complaint text is required")
	}
	if len(text) > maxTextLength {
		return workflow.Complaint{}, apperr.Validation("Complaint text must be at most %d characters", maxTextLength)
	}
	name := sanitize.Text(in.PassengerName)
	if name == "" {
		name = util.DisplayName("", a.Username)
	}
	station := util.NormalizeName(sanitize.Text(in.Station))
	if station == "" {
		station = a.Station
	}
	phone, train, err := journey(in, time.Now())
	if err != nil {
		return workflow.Complaint{}, err
	}

	assessment := s.classifier.Classify(ctx, text)
	created, err := s.store.Create(ctx, CreateInput{
		PassengerName:   name,
		Phone:           phone,
		Text:            text,
		Station:         workflow.Str(station),
		Train:           train,
		PreviousStation: workflow.Str(util.NormalizeName(sanitize.Text(in.PreviousStation))),
		NextStation:     workflow.Str(util.NormalizeName(sanitize.Text(in.NextStation))),
		IncidentAt:      in.IncidentAt,
		Department:      assessment.Department,
		Score:           urgency.Clamp(assessment.Score),
		CreatedBy:       a.Username,
	})
	if err != nil {
		return workflow.Complaint{}, err
	}

	metrics.ComplaintsCreated.WithLabelValues(assessment.Department).Inc()
	s.logger.Info().
		Int64("complaint", created.ID).
		Str("department", assessment.Department).
		Str("source", assessment.Source).
		Msg("complaint filed")

	if created.Urgent() {
		metrics.UrgentComplaints.Inc()
		s.alert(ctx, created, notify.SeverityCritical, "Urgent complaint")
	}
	return created, nil
}

func (s *Service) alert(ctx context.Context, c workflow.Complaint, severity, title string) {
	msg := notify.Alert{
		Title:    fmt.Sprintf("%s #%d", title, c.ID),
		Text:     fmt.Sprintf("%s (station: %s, department: %s)", c.ComplaintText, orDash(c.Station), orDash(c.Department)),
		Severity: severity,
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.Warn().Err(err).Int64("complaint", c.ID).Msg("alert not delivered")
	}
}

func orDash(s *string) string {
	if v := workflow.Deref(s); v != "" {
		return v
	}
	return "-"
}

// List returns the complaints in the caller's scope: passengers their own,
// staff their assignments, station masters their station, admins all.
func (s *Service) List(ctx context.Context, a workflow.Actor) ([]workflow.Complaint, error) {
	switch a.Role {
	case role.User:
		return s.store.List(ctx, Filter{CreatedBy: a.Username})
	case role.StationStaff:
		return s.store.List(ctx, Filter{AssignedTo: a.Username})
	case role.StationMaster:
		return s.store.List(ctx, Filter{Station: a.Station})
	case role.RPFAdmin, role.SuperAdmin:
		return s.store.List(ctx, Filter{})
	}
	return nil, apperr.Forbidden("unknown role")
}

// Mine returns the complaints the caller filed.
func (s *Service) Mine(ctx context.Context, a workflow.Actor) ([]workflow.Complaint, error) {
	return s.store.List(ctx, Filter{CreatedBy: a.Username})
}

// ByStation lists a station's complaints. Station masters only see their own.
func (s *Service) ByStation(ctx context.Context, a workflow.Actor, station string) ([]workflow.Complaint, error) {
	if err := access.Require(a.Role, access.ViewStationComplaints); err != nil {
		return nil, err
	}
	station = strings.TrimSpace(station)
	if station == "" {
		return nil, apperr.Validation("Station name is required")
	}
	if a.Role == role.StationMaster && !strings.EqualFold(station, a.Station) {
		return nil, apperr.Forbidden("You can only view complaints of %s", a.Station)
	}
	return s.store.List(ctx, Filter{Station: station})
}

// AssignedTo lists a staff member's assignments.
func (s *Service) AssignedTo(ctx context.Context, a workflow.Actor, username string) ([]workflow.Complaint, error) {
	if err := access.Require(a.Role, access.ViewAssignedComplaints); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validation("Staff username is required")
	}
	f := Filter{AssignedTo: username}
	switch a.Role {
	case role.StationStaff:
		if !strings.EqualFold(username, a.Username) {
			return nil, apperr.Forbidden("You can only view your own tasks")
		}
	case role.StationMaster:
		f.Station = a.Station
	}
	return s.store.List(ctx, f)
}

// ByDepartment lists complaints routed to a department.
func (s *Service) ByDepartment(ctx context.Context, a workflow.Actor, department string) ([]workflow.Complaint, error) {
	if err := access.Require(a.Role, access.ViewAllComplaints); err != nil {
		return nil, err
	}
	if strings.TrimSpace(department) == "" {
		return nil, apperr.Validation("Department is required")
	}
	return s.store.List(ctx, Filter{Department: strings.TrimSpace(department)})
}

// Escalated lists open complaints handed off to RPF.
func (s *Service) Escalated(ctx context.Context, a workflow.Actor) ([]workflow.Complaint, error) {
	if err := access.Require(a.Role, access.ViewEscalated); err != nil {
		return nil, err
	}
	return s.store.List(ctx, Filter{Escalated: true, OpenOnly: true})
}

func (s *Service) get(ctx context.Context, id int64) (workflow.Complaint, error) {
	c, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return workflow.Complaint{}, &apperr.Error{Kind: apperr.ErrNotFound, Message: fmt.Sprintf("Complaint #%d not found", id), Err: err}
	}
	return c, err
}

func canRead(a workflow.Actor, c workflow.Complaint) bool {
	if c.CreatedBy != nil && strings.EqualFold(*c.CreatedBy, a.Username) {
		return true
	}
	if a.Role == role.User {
		return false
	}
	return workflow.InScope(a, c)
}

// write stores ch, which was decided on the status the caller last read.
func (s *Service) write(ctx context.Context, id int64, read workflow.Complaint, ch Change, h HistoryInput) (workflow.Complaint, error) {
	ch.Expect = read.Status
	updated, err := s.store.Update(ctx, id, ch, h)
	switch {
	case errors.Is(err, ErrStale):
		return workflow.Complaint{}, &apperr.Error{
			Kind:    apperr.ErrValidation,
			Status:  http.StatusConflict,
			Message: fmt.Sprintf("Complaint #%d was updated by someone else. Reload and try again.", id),
			Err:     err,
		}
	case errors.Is(err, ErrNotFound):
		return workflow.Complaint{}, &apperr.Error{Kind: apperr.ErrNotFound, Message: fmt.Sprintf("Complaint #%d not found", id), Err: err}
	}
	return updated, err
}

// Get returns one complaint the caller may read.
func (s *Service) Get(ctx context.Context, a workflow.Actor, id int64) (workflow.Complaint, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return workflow.Complaint{}, err
	}
	if !canRead(a, c) {
		return workflow.Complaint{}, apperr.Forbidden("complaint #%d is outside your scope", id)
	}
	return c, nil
}

// Track returns the public view of a complaint. It needs no account, so only
// the fields in workflow.Tracking leave the store.
func (s *Service) Track(ctx context.Context, id int64) (workflow.Tracking, error) {
	if id <= 0 {
		return workflow.Tracking{}, apperr.Validation("Reference number must be positive")
	}
	c, err := s.get(ctx, id)
	if err != nil {
		return workflow.Tracking{}, err
	}
	return c.Track(), nil
}

// History lists the recorded changes of a complaint the caller may read.
func (s *Service) History(ctx context.Context, a workflow.Actor, id int64) ([]repo.HistoryEntry, error) {
	if _, err := s.Get(ctx, a, id); err != nil {
		return nil, err
	}
	return s.store.History(ctx, id)
}

// UpdateStatus moves a complaint to newStatus. Repeating the current status
// is a no-op; moving backwards is rejected.
func (s *Service) UpdateStatus(ctx context.Context, a workflow.Actor, id int64, newStatus string) (workflow.Complaint, error) {
	target, err := workflow.ParseStatus(newStatus)
	if err != nil {
		return workflow.Complaint{}, &apperr.Error{Kind: apperr.ErrValidation, Message: "Unknown status " + strings.TrimSpace(newStatus), Err: err}
	}
	event, err := workflow.EventFor(target)
	if err != nil {
		return workflow.Complaint{}, &apperr.Error{Kind: apperr.ErrValidation, Message: err.Error(), Err: err}
	}

	c, err := s.get(ctx, id)
	if err != nil {
		return workflow.Complaint{}, err
	}
	to, changed, err := workflow.Transition(a, c, event)
	if err != nil {
		return workflow.Complaint{}, err
	}
	if !changed {
		return c, nil
	}

	ch := Change{Status: &to}
	if to == workflow.Resolved {
		ch.ResolvedBy = &a.Username
	}
	updated, err := s.write(ctx, id, c, ch, HistoryInput{OldStatus: c.Status, NewStatus: to, UpdatedBy: a.Username})
	if err != nil {
		return workflow.Complaint{}, err
	}
	metrics.StatusTransitions.WithLabelValues(c.Status.String(), to.String()).Inc()
	s.logger.Info().Int64("complaint", id).Str("from", c.Status.String()).Str("to", to.String()).Str("by", a.Username).Msg("status changed")
	return updated, nil
}

// AddRemarks records a note; the status is untouched.
func (s *Service) AddRemarks(ctx context.Context, a workflow.Actor, id int64, remarks string) (workflow.Complaint, error) {
	text := sanitize.Text(remarks)
	c, err := s.get(ctx, id)
	if err != nil {
		return workflow.Complaint{}, err
	}
	if err := workflow.CheckRemark(a, c, text); err != nil {
		return workflow.Complaint{}, err
	}
	return s.write(ctx, id, c, Change{Remarks: &text},
		HistoryInput{OldStatus: c.Status, NewStatus: c.Status, Note: &text, UpdatedBy: a.Username})
}

// Assign hands a complaint to staff. Assignment never changes the status.
func (s *Service) Assign(ctx context.Context, a workflow.Actor, id int64, staff, remarks string) (workflow.Complaint, error) {
	staff = strings.TrimSpace(staff)
	c, err := s.get(ctx, id)
	if err != nil {
		return workflow.Complaint{}, err
	}
	if err := workflow.CheckAssign(a, c, staff); err != nil {
		return workflow.Complaint{}, err
	}

	ch := Change{AssignedTo: &staff}
	note := "Assigned to " + staff
	if r := sanitize.Text(remarks); r != "" {
		ch.Remarks = &r
		note += ": " + r
	}
	updated, err := s.write(ctx, id, c, ch, HistoryInput{OldStatus: c.Status, NewStatus: c.Status, Note: &note, UpdatedBy: a.Username})
	if err != nil {
		return workflow.Complaint{}, err
	}
	s.logger.Info().Int64("complaint", id).Str("assignee", staff).Str("by", a.Username).Msg("complaint assigned")
	return updated, nil
}

// Escalate flags a complaint for RPF review. It is idempotent and leaves the
// status alone.
func (s *Service) Escalate(ctx context.Context, a workflow.Actor, id int64) (workflow.Complaint, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return workflow.Complaint{}, err
	}
	changed, err := workflow.CheckEscalate(a, c)
	if err != nil {
		return workflow.Complaint{}, err
	}
	if !changed {
		return c, nil
	}

	now := util.Now()
	note := "Escalated to RPF"
	updated, err := s.write(ctx, id, c, Change{EscalatedBy: &a.Username, EscalatedAt: &now},
		HistoryInput{OldStatus: c.Status, NewStatus: c.Status, Note: &note, UpdatedBy: a.Username})
	if err != nil {
		return workflow.Complaint{}, err
	}
	metrics.Escalations.Inc()
	s.logger.Warn().Int64("complaint", id).Str("station", workflow.Deref(c.Station)).Str("by", a.Username).Msg("complaint escalated")
	s.alert(ctx, updated, notify.SeverityWarning, "Escalated complaint")
	return updated, nil
}

// CountByDepartment feeds the department chart.
func (s *Service) CountByDepartment(ctx context.Context, a workflow.Actor) (map[string]int64, error) {
	if err := access.Require(a.Role, access.ViewAnalytics); err != nil {
		return nil, err
	}
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return nil, err
	}
	return counts.ByDepartment, nil
}

// TopIssues lists the five most repeated complaints.
func (s *Service) TopIssues(ctx context.Context, a workflow.Actor) ([]string, error) {
	if err := access.Require(a.Role, access.ViewAnalytics); err != nil {
		return nil, err
	}
	return s.store.TopIssues(ctx, 5)
}

// Counts returns the totals used by the super admin stats.
func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.store.Counts(ctx)
}
