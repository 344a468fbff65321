package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"angelupdate/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncUpdateChecks(country string, hasUpdates bool)
	IncPackageBuilds(result string)
	ObserveBuildDuration(duration time.Duration)
	IncCacheHits(tier string)
	IncCacheMisses(tier string)
	IncCollectorRuns(id string, success bool)
}

type MetricsProvider struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	updateChecks    *prometheus.CounterVec
	packageBuilds   *prometheus.CounterVec
	buildDuration   prometheus.Histogram
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	collectorRuns   *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncUpdateChecks(country string, hasUpdates bool) {
	m.updateChecks.WithLabelValues(country, boolLabel(hasUpdates)).Inc()
}

func (m *MetricsProvider) IncPackageBuilds(result string) {
	m.packageBuilds.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) ObserveBuildDuration(duration time.Duration) {
	m.buildDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits(tier string) {
	m.cacheHits.WithLabelValues(tier).Inc()
}

func (m *MetricsProvider) IncCacheMisses(tier string) {
	m.cacheMisses.WithLabelValues(tier).Inc()
}

func (m *MetricsProvider) IncCollectorRuns(id string, success bool) {
	m.collectorRuns.WithLabelValues(id, boolLabel(success)).Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "angelupd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "angelupd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		updateChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "angelupd_update_checks_total",
			Help: "Total number of update check requests that reached the pipeline",
		}, []string{"country", "has_updates"}),

		packageBuilds: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "angelupd_package_builds_total",
			Help: "Package build outcomes (built, reused, failed)",
		}, []string{"result"}),

		buildDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "angelupd_package_build_duration_seconds",
			Help:    "Duration of package archive builds in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "angelupd_cache_hits_total",
			Help: "Cache hits per tier",
		}, []string{"tier"}),

		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "angelupd_cache_misses_total",
			Help: "Cache misses per tier",
		}, []string{"tier"}),

		collectorRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "angelupd_collector_runs_total",
			Help: "Collector run outcomes",
		}, []string{"collector", "success"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncUpdateChecks(_ string, _ bool)                 {}
func (n *noopMetrics) IncPackageBuilds(_ string)                        {}
func (n *noopMetrics) ObserveBuildDuration(_ time.Duration)             {}
func (n *noopMetrics) IncCacheHits(_ string)                            {}
func (n *noopMetrics) IncCacheMisses(_ string)                          {}
func (n *noopMetrics) IncCollectorRuns(_ string, _ bool)                {}
