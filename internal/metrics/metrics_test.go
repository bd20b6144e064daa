package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsAreExposed(t *testing.T) {
	ComplaintsCreated.WithLabelValues("Water").Inc()
	StatusTransitions.WithLabelValues("PENDING", "RESOLVED").Inc()
	Escalations.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `railmadad_complaints_created_total{department="Water"}`)
	assert.Contains(t, string(body), `railmadad_status_transitions_total{from="PENDING",to="RESOLVED"}`)
	assert.Contains(t, string(body), "railmadad_escalations_total")
}
