package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uniportal/internal/authflow"
)

func TestFlowMetrics_Observe(t *testing.T) {
	m := NewFlowMetrics()

	m.Observe(authflow.ModeSignUp, authflow.StateValidating)
	m.Observe(authflow.ModeSignUp, authflow.StateDone)
	m.Observe(authflow.ModeSignIn, authflow.StateValidating)
	m.Observe(authflow.ModeSignIn, authflow.StateFailed)
	m.Observe(authflow.ModeSignIn, authflow.StateFailed)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("signup", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues("signin", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.states.WithLabelValues("signin", "validating")))
}

func TestFlowMetrics_Handler(t *testing.T) {
	m := NewFlowMetrics()
	m.Observe(authflow.ModeSignIn, authflow.StateDone)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `uniportal_auth_flow_total{mode="signin",outcome="success"} 1`)
}
