// Package gateway is the typed client of the RailMadad HTTP API. Every call
// returns errors from the apperr taxonomy.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/railmadad/portal/internal/apperr"
)

const defaultTimeout = 15 * time.Second

// TokenSource supplies the bearer credential; *session.Store implements it.
type TokenSource interface {
	Token() string
}

// Client calls the backend on behalf of the current session.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	tokens         TokenSource
	onUnauthorized func()
	logger         zerolog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// OnUnauthorized registers fn to run when the backend rejects the bearer
// token. The CLI wires it to Store.Logout so a revoked token never lingers.
func OnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New builds a client for baseURL. tokens may be nil for anonymous use.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("gateway: base url required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("gateway: invalid base url: %w", err)
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    base,
		tokens:     tokens,
		logger:     log.With().Str("component", "gateway").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: encode %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("gateway: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &apperr.Error{Kind: apperr.ErrNetwork, Message: "Request cancelled.", Err: ctxErr}
		}
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return apperr.Network(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return c.failure(resp, token != "")
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperr.Error{Kind: apperr.ErrNetwork, Status: resp.StatusCode, Message: "The server sent an unreadable response.", Err: err}
	}
	return nil
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// failure maps a non-2xx response onto the error taxonomy.
func (c *Client) failure(resp *http.Response, authenticated bool) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	_ = json.Unmarshal(raw, &body)
	msg := strings.TrimSpace(body.Message)
	if msg == "" {
		msg = strings.TrimSpace(body.Error)
	}

	e := &apperr.Error{Status: resp.StatusCode, Message: msg}
	switch code := resp.StatusCode; {
	case code == http.StatusUnauthorized:
		e.Kind = apperr.ErrAuth
		if authenticated && c.onUnauthorized != nil {
			c.logger.Info().Msg("token rejected, signing out")
			c.onUnauthorized()
		}
	case code == http.StatusForbidden:
		e.Kind = apperr.ErrAuthorization
	case code == http.StatusNotFound:
		e.Kind = apperr.ErrNotFound
	case code == http.StatusBadRequest, code == http.StatusConflict, code == http.StatusUnprocessableEntity:
		e.Kind = apperr.ErrValidation
	default:
		e.Kind = apperr.ErrNetwork
	}
	return e
}

func seg(v string) string {
	return url.PathEscape(strings.TrimSpace(v))
}
