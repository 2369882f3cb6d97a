package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	feeduc "github.com/kailas-cloud/feedex/internal/usecase/feed"
)

// Feed assembly Prometheus metrics.
var (
	FeedPassesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedex",
			Name:      "feed_passes_total",
			Help:      "Feed assembly passes by region scope",
		},
		[]string{"state"},
	)

	FeedFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "feedex",
			Name:      "feed_fallbacks_total",
			Help:      "Feed requests that fell back to rest of world",
		},
	)

	FeedSuppressedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedex",
			Name:      "feed_suppressed_total",
			Help:      "Feed items dropped by visibility policies",
		},
		[]string{"item_type"},
	)

	FeedOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "feedex",
			Name:      "feed_outcomes_total",
			Help:      "Feed requests by how they ended",
		},
		[]string{"outcome"},
	)
)

// FeedObserver records feed assembly events. The zero value is ready to use.
type FeedObserver struct{}

// Pass counts one assembly pass.
func (FeedObserver) Pass(s feeduc.State) { FeedPassesTotal.WithLabelValues(string(s)).Inc() }

// Fallback counts one fallback to rest of world.
func (FeedObserver) Fallback() { FeedFallbacksTotal.Inc() }

// Suppressed counts items dropped by policy.
func (FeedObserver) Suppressed(t domfeed.ItemType, n int) {
	FeedSuppressedTotal.WithLabelValues(string(t)).Add(float64(n))
}

// Outcome counts a finished request.
func (FeedObserver) Outcome(o feeduc.Outcome) { FeedOutcomesTotal.WithLabelValues(string(o)).Inc() }
