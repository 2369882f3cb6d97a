package metrics

import "github.com/prometheus/client_golang/prometheus"

// Background worker Prometheus metrics.
var (
	ImageJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedex",
			Name:      "image_jobs_total",
			Help:      "Processed image jobs by result",
		},
		[]string{"result"}, // "ok" / "retried" / "failed"
	)

	ImageBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "feedex",
			Name:      "image_bytes_total",
			Help:      "Bytes of images stored",
		},
	)

	ReindexRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedex",
			Name:      "reindex_runs_total",
			Help:      "Index rebuilds by result",
		},
		[]string{"result"},
	)

	ReindexOrphansTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "feedex",
			Name:      "reindex_orphans_total",
			Help:      "Stale index documents deleted by rebuilds",
		},
	)

	ReindexDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "feedex",
			Name:      "reindex_duration_seconds",
			Help:      "Index rebuild duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
)

var domainMetricsRegistered bool

// RegisterDomainMetrics registers feed and worker metrics. Must be called once from main.
func RegisterDomainMetrics() {
	if domainMetricsRegistered {
		return
	}
	prometheus.MustRegister(FeedPassesTotal)
	prometheus.MustRegister(FeedFallbacksTotal)
	prometheus.MustRegister(FeedSuppressedTotal)
	prometheus.MustRegister(FeedOutcomesTotal)
	prometheus.MustRegister(ImageJobsTotal)
	prometheus.MustRegister(ImageBytesTotal)
	prometheus.MustRegister(ReindexRunsTotal)
	prometheus.MustRegister(ReindexOrphansTotal)
	prometheus.MustRegister(ReindexDuration)
	domainMetricsRegistered = true
}
