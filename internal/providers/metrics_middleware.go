package providers

import (
	"net/http"
	"strings"
	"time"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

const downloadPrefix = "/api/v1/update/download/"

// endpointLabel maps a request path to its metric label. Download paths
// embed the requested version, so they are collapsed to one label to keep
// the per-endpoint series count bounded.
func endpointLabel(path string) string {
	if rest, ok := strings.CutPrefix(path, downloadPrefix); ok && rest != "" {
		return downloadPrefix + ":version"
	}
	return path
}

// MetricsMiddleware records the request count and latency per endpoint and
// status code around the wrapped handler.
func MetricsMiddleware(metrics MetricsProviderInterface, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		endpoint := endpointLabel(r.URL.Path)
		metrics.IncRequestsTotal(endpoint, sw.status)
		metrics.ObserveRequestDuration(endpoint, time.Since(start))
	})
}
