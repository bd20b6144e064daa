package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/repo"
	"github.com/railmadad/portal/internal/role"
)

// EmergencyContacts lists the emergency numbers.
func (c *Client) EmergencyContacts(ctx context.Context) ([]repo.Contact, error) {
	var out []repo.Contact
	if err := c.get(ctx, "/emergency-contacts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Helpline returns the general helpline.
func (c *Client) Helpline(ctx context.Context) (repo.Helpline, error) {
	var out repo.Helpline
	err := c.get(ctx, "/helpline", &out)
	return out, err
}

// Staff lists the station staff roster. An empty station lets admins see
// every station; station masters always get their own.
func (c *Client) Staff(ctx context.Context, station string) ([]repo.User, error) {
	var q url.Values
	if s := strings.TrimSpace(station); s != "" {
		q = url.Values{"station": {s}}
	}
	var out []repo.User
	if err := c.do(ctx, http.MethodGet, "/staff", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewUser is a super admin's account creation request.
type NewUser struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	StationName string `json:"stationName,omitempty"`
}

// UserUpdate changes an account's role and/or station.
type UserUpdate struct {
	Role        *string `json:"role,omitempty"`
	StationName *string `json:"stationName,omitempty"`
}

func userPath(id int64) string {
	return "/superadmin/users/" + strconv.FormatInt(id, 10)
}

// Users lists every account.
func (c *Client) Users(ctx context.Context) ([]repo.User, error) {
	var out []repo.User
	if err := c.get(ctx, "/superadmin/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser adds an account of any role.
func (c *Client) CreateUser(ctx context.Context, u NewUser) (repo.User, error) {
	rl, err := role.Parse(u.Role)
	if err != nil {
		return repo.User{}, apperr.Validation("Choose a valid role")
	}
	if strings.TrimSpace(u.Email) == "" || u.Password == "" {
		return repo.User{}, apperr.Validation("Email and password are required")
	}
	if rl.RequiresStation() && strings.TrimSpace(u.StationName) == "" {
		return repo.User{}, apperr.Validation("Station name is required for %s accounts", rl.Label())
	}
	u.Role = rl.String()
	var out repo.User
	err = c.do(ctx, http.MethodPost, "/superadmin/users", nil, u, &out)
	return out, err
}

// UpdateUser changes an account's role or station.
func (c *Client) UpdateUser(ctx context.Context, id int64, upd UserUpdate) (repo.User, error) {
	if upd.Role == nil && upd.StationName == nil {
		return repo.User{}, apperr.Validation("Nothing to update")
	}
	if upd.Role != nil {
		rl, err := role.Parse(*upd.Role)
		if err != nil {
			return repo.User{}, apperr.Validation("Choose a valid role")
		}
		normalized := rl.String()
		upd.Role = &normalized
	}
	var out repo.User
	err := c.do(ctx, http.MethodPatch, userPath(id), nil, upd, &out)
	return out, err
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, userPath(id), nil, nil, nil)
}

// Stats returns account and complaint totals.
func (c *Client) Stats(ctx context.Context) (repo.Stats, error) {
	var out repo.Stats
	err := c.get(ctx, "/superadmin/stats", &out)
	return out, err
}

// NewAnnouncement is a station master's notice.
type NewAnnouncement struct {
	Station string    `json:"station"`
	Team    repo.Team `json:"team"`
	Message string    `json:"message"`
}

// PostAnnouncement appends a notice to a station's log.
func (c *Client) PostAnnouncement(ctx context.Context, n NewAnnouncement) (repo.Announcement, error) {
	team, ok := repo.ParseTeam(string(n.Team))
	if !ok {
		return repo.Announcement{}, apperr.Validation("Choose a team")
	}
	if strings.TrimSpace(n.Message) == "" {
		return repo.Announcement{}, apperr.Validation("Announcement message cannot be empty")
	}
	n.Team = team
	n.Message = strings.TrimSpace(n.Message)
	var out repo.Announcement
	err := c.do(ctx, http.MethodPost, "/announcements", nil, n, &out)
	return out, err
}

// Announcements lists a station's notices, newest first.
func (c *Client) Announcements(ctx context.Context, station string) ([]repo.Announcement, error) {
	if strings.TrimSpace(station) == "" {
		return nil, apperr.Validation("Station name is required")
	}
	var out []repo.Announcement
	if err := c.get(ctx, "/announcements/station/"+seg(station), &out); err != nil {
		return nil, err
	}
	return out, nil
}
