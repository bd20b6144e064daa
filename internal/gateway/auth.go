package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/role"
	"github.com/railmadad/portal/internal/session"
	"github.com/railmadad/portal/internal/util"
)

// LoginRequest accepts either an email or a username.
type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Token       string `json:"token"`
	Role        string `json:"role"`
	StationName string `json:"stationName,omitempty"`
	Email       string `json:"email,omitempty"`
	Username    string `json:"username,omitempty"`
	FullName    string `json:"fullName,omitempty"`
}

// Credentials converts the result into what the session store persists.
func (r LoginResult) Credentials() session.Credentials {
	username := r.Email
	if username == "" {
		username = r.Username
	}
	return session.Credentials{
		Token:    r.Token,
		Role:     r.Role,
		Station:  r.StationName,
		Username: username,
		FullName: r.FullName,
	}
}

// SignupRequest registers a passenger or, with the officer key, an official.
type SignupRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	StationName string `json:"stationName,omitempty"`
	OfficerKey  string `json:"officerKey,omitempty"`
}

// Validate reports missing or malformed fields before anything is sent.
func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" && strings.TrimSpace(r.Username) == "" {
		return apperr.Validation("Email is required")
	}
	if r.Password == "" {
		return apperr.Validation("Password is required")
	}
	return nil
}

// Validate reports missing or malformed fields before anything is sent.
func (r SignupRequest) Validate() error {
	if err := util.RequireString(r.FullName, "Full name"); err != nil {
		return err
	}
	if err := util.ValidateEmail(r.Email); err != nil {
		return err
	}
	if err := util.ValidatePassword(r.Password); err != nil {
		return err
	}
	rl := role.User
	if strings.TrimSpace(r.Role) != "" {
		parsed, err := role.Parse(r.Role)
		if err != nil {
			return apperr.Validation("Choose a valid role")
		}
		rl = parsed
	}
	if rl == role.SuperAdmin {
		return apperr.Validation("Super admin accounts cannot be created by signup")
	}
	if rl.RequiresStation() && strings.TrimSpace(r.StationName) == "" {
		return apperr.Validation("Station name is required for %s accounts", rl.Label())
	}
	if rl != role.User && strings.TrimSpace(r.OfficerKey) == "" {
		return apperr.Validation("Officer key is required for %s accounts", rl.Label())
	}
	return nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	if err := req.Validate(); err != nil {
		return LoginResult{}, err
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	var out LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &out); err != nil {
		return LoginResult{}, err
	}
	if strings.TrimSpace(out.Token) == "" {
		return LoginResult{}, &apperr.Error{Kind: apperr.ErrAuth, Message: "Login failed. Please try again."}
	}
	if out.Email == "" && out.Username == "" {
		out.Email = req.Email
		out.Username = req.Username
	}
	return out, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = util.NormalizeName(req.FullName)
	req.StationName = util.NormalizeName(req.StationName)
	return c.do(ctx, http.MethodPost, "/auth/signup", nil, req, nil)
}

// Logout revokes the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	if c.token() == "" {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}
