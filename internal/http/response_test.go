package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railmadad/portal/internal/apperr"
	"github.com/railmadad/portal/internal/complaint"
)

func TestWriteServiceErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"validation", apperr.Validation("Complaint text is required"), http.StatusBadRequest, "VALIDATION", "Complaint text is required"},
		{"unprocessable", &apperr.Error{Kind: apperr.ErrValidation, Status: http.StatusUnprocessableEntity, Message: "Station is unknown"},
			http.StatusUnprocessableEntity, "VALIDATION", "Station is unknown"},
		{"unavailable", &apperr.Error{Kind: apperr.ErrNetwork, Status: http.StatusServiceUnavailable, Message: "Classifier is down"},
			http.StatusServiceUnavailable, "UNAVAILABLE", "Classifier is down"},
		{"gone", &apperr.Error{Kind: apperr.ErrNotFound, Status: http.StatusGone, Message: "Complaint was archived"},
			http.StatusGone, "REQUEST_FAILED", "Complaint was archived"},
		{"stale write", &apperr.Error{Kind: apperr.ErrValidation, Status: http.StatusConflict, Message: "Reload and try again", Err: complaint.ErrStale},
			http.StatusConflict, "CONFLICT", "Reload and try again"},
		{"unclassified", errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL", "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/complaints/101", nil), tc.err)

			assert.Equal(t, tc.status, rec.Code)
			var body ErrorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.msg, body.Message)
		})
	}
}
