package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railmadad/portal/internal/access"
	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/auth"
	"github.com/railmadad/portal/internal/role"
	"github.com/railmadad/portal/internal/workflow"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

type authnFunc func(ctx context.Context, token string) (*auth.Claims, error)

func (f authnFunc) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	return f(ctx, token)
}

func TestAuthPutsActorInContext(t *testing.T) {
	authn := authnFunc(func(_ context.Context, token string) (*auth.Claims, error) {
		switch token {
		case "good":
			c := &auth.Claims{Role: "STATION_MASTER", Station: "Pune"}
			c.Subject = "sm@rail.in"
			return c, nil
		case "nostation":
			c := &auth.Claims{Role: "STATION_STAFF"}
			c.Subject = "x"
			return c, nil
		}
		return nil, &apperr.Error{Kind: apperr.ErrAuth, Message: "bad token"}
	})

	var got workflow.Actor
	h := Auth(authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetActor(r.Context())
	}))

	cases := map[string]int{"": http.StatusUnauthorized, "Bearer bad": http.StatusUnauthorized, "Bearer nostation": http.StatusForbidden, "Bearer good": http.StatusOK}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, header)
	}
	assert.Equal(t, workflow.Actor{Username: "sm@rail.in", Role: role.StationMaster, Station: "Pune"}, got)
}

func withActor(r *http.Request, a workflow.Actor) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ContextKeyActor, a))
}

func TestRequireAction(t *testing.T) {
	h := RequireAction(access.StartComplaint, access.ResolveComplaint)(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodPatch, "/", nil), workflow.Actor{Role: role.StationStaff}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodPatch, "/", nil), workflow.Actor{Role: role.User}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"FORBIDDEN"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://railmadad.example", "*.rail.example"})(ok)

	for origin, allowed := range map[string]bool{
		"https://railmadad.example": true,
		"https://app.rail.example":  true,
		"https://rail.example":      false,
		"https://evil.example":      false,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if allowed {
			assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"), origin)
		} else {
			assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"), origin)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestIPRateLimit(t *testing.T) {
	h := IPRateLimit(NewRateLimiter("test", 0.001, 2))(ok)
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "10.0.0.2")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
