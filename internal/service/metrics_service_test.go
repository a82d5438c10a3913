package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ta-hiring-api/internal/models"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/applications/:courseCode", http.StatusOK, 20*time.Millisecond)
	m.ObserveRemoteCall("courses", "grade", nil, time.Millisecond)
	m.ObserveRemoteCall("staffing", "ratings", errors.New("boom"), time.Millisecond)
	m.RecordTransition("select", models.ApplicationStatusApproved)
	m.RecordNotificationFailure()
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(2), snap.RemoteCalls)
	assert.Equal(t, uint64(1), snap.RemoteFailures)
	assert.Equal(t, uint64(1), snap.Transitions)
	assert.Equal(t, uint64(1), snap.NotificationFailures)
	assert.Equal(t, 0.5, snap.CacheHitRatio)
	assert.False(t, snap.GeneratedAt.IsZero())
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.RecordTransition("reject", models.ApplicationStatusRejected)
	m.RecordRedelivery("queued")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `application_transitions_total{to="REJECTED",transition="reject"} 1`))
	assert.True(t, strings.Contains(body, `notification_redeliveries_total{outcome="queued"} 1`))
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveRemoteCall("courses", "grade", nil, time.Millisecond)
	m.RecordTransition("select", models.ApplicationStatusApproved)
	assert.Equal(t, models.SystemMetrics{}, m.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
