package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveREST(t *testing.T) {
	m := New()
	m.ObserveREST("query", "ok", 10*time.Millisecond)
	m.ObserveREST("query", "ok", 20*time.Millisecond)
	m.ObserveREST("query", "not_found", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.restCalls.WithLabelValues("query", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.restCalls.WithLabelValues("query", "not_found")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveREST("query", "ok", time.Second)
	m.ObserveRefresh("ok")
	m.ObserveHTTP("GET", "200")
}

func TestHandlerServesMetrics(t *testing.T) {
	m := New()
	m.ObserveRefresh("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `scanreport_list_refreshes_total{result="ok"} 1`)
}
