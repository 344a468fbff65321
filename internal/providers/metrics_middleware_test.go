package providers

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMetrics struct {
	mu        sync.Mutex
	endpoints []string
	statuses  []int
	durations int
}

func (m *recordingMetrics) IncRequestsTotal(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endpoints = append(m.endpoints, endpoint)
	m.statuses = append(m.statuses, status)
}

func (m *recordingMetrics) ObserveRequestDuration(_ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations++
}

func (m *recordingMetrics) IncUpdateChecks(_ string, _ bool)     {}
func (m *recordingMetrics) IncPackageBuilds(_ string)            {}
func (m *recordingMetrics) ObserveBuildDuration(_ time.Duration) {}
func (m *recordingMetrics) IncCacheHits(_ string)                {}
func (m *recordingMetrics) IncCacheMisses(_ string)              {}
func (m *recordingMetrics) IncCollectorRuns(_ string, _ bool)    {}

func TestMetricsMiddleware_RecordsStatusAndDuration(t *testing.T) {
	metrics := &recordingMetrics{}
	handler := MetricsMiddleware(metrics, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/update/version", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Len(t, metrics.statuses, 1)
	assert.Equal(t, http.StatusNotFound, metrics.statuses[0])
	assert.Equal(t, "/api/v1/update/version", metrics.endpoints[0])
	assert.Equal(t, 1, metrics.durations)
}

func TestMetricsMiddleware_CollapsesDownloadVersions(t *testing.T) {
	metrics := &recordingMetrics{}
	handler := MetricsMiddleware(metrics, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, version := range []string{"2024.03.01.10", "2024.03.02.10", "2024.03.02.11.001"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/update/download/"+version+"?countryCode=FR", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, metrics.endpoints, 3)
	for _, endpoint := range metrics.endpoints {
		assert.Equal(t, "/api/v1/update/download/:version", endpoint)
	}
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "/api/v1/update/check", endpointLabel("/api/v1/update/check"))
	assert.Equal(t, "/api/v1/update/download/:version", endpointLabel("/api/v1/update/download/2024.03.02.10"))
	// Bare download path without a version keeps its own label.
	assert.Equal(t, "/api/v1/update/download/", endpointLabel("/api/v1/update/download/"))
	assert.Equal(t, "/metrics", endpointLabel("/metrics"))
}

func TestMetricsMiddleware_DefaultsToOK(t *testing.T) {
	metrics := &recordingMetrics{}
	handler := MetricsMiddleware(metrics, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("implicit 200"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Len(t, metrics.statuses, 1)
	assert.Equal(t, http.StatusOK, metrics.statuses[0])
}
