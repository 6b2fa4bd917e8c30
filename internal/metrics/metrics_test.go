package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAuthEvent(t *testing.T) {
	m := New()

	m.RecordAuthEvent("login_attempt", false, "wrong_password")
	m.RecordAuthEvent("login_attempt", false, "wrong_password")
	m.RecordAuthEvent("login_success", true, "")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login_attempt", "false", "wrong_password")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login_success", "true", "")))
}

func TestRecordSweep(t *testing.T) {
	m := New()

	m.RecordSweep(0)
	m.RecordSweep(-1)
	m.RecordSweep(4)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.SessionsSwept))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAuthEvent("logout", true, "")
		m.RecordSweep(3)
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.RecordAuthEvent("refresh_failure", false, "expired")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `medportal_auth_events_total{action="refresh_failure",reason="expired",success="false"} 1`)
}
