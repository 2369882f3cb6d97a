package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	domfeed "github.com/kailas-cloud/feedex/internal/domain/feed"
	feeduc "github.com/kailas-cloud/feedex/internal/usecase/feed"
)

func TestFeedObserver(t *testing.T) {
	var o feeduc.Observer = FeedObserver{}

	passes := testutil.ToFloat64(FeedPassesTotal.WithLabelValues("fallback"))
	fallbacks := testutil.ToFloat64(FeedFallbacksTotal)
	suppressed := testutil.ToFloat64(FeedSuppressedTotal.WithLabelValues("collection"))
	outcomes := testutil.ToFloat64(FeedOutcomesTotal.WithLabelValues("fallback_served"))

	o.Pass(feeduc.StateFallback)
	o.Fallback()
	o.Suppressed(domfeed.TypeCollection, 3)
	o.Outcome(feeduc.OutcomeFallback)

	if got := testutil.ToFloat64(FeedPassesTotal.WithLabelValues("fallback")); got != passes+1 {
		t.Errorf("passes = %f, want %f", got, passes+1)
	}
	if got := testutil.ToFloat64(FeedFallbacksTotal); got != fallbacks+1 {
		t.Errorf("fallbacks = %f, want %f", got, fallbacks+1)
	}
	if got := testutil.ToFloat64(FeedSuppressedTotal.WithLabelValues("collection")); got != suppressed+3 {
		t.Errorf("suppressed = %f, want %f", got, suppressed+3)
	}
	if got := testutil.ToFloat64(FeedOutcomesTotal.WithLabelValues("fallback_served")); got != outcomes+1 {
		t.Errorf("outcomes = %f, want %f", got, outcomes+1)
	}
}

func TestRegisterDomainMetrics_Idempotent(t *testing.T) {
	RegisterDomainMetrics()
	RegisterDomainMetrics()
}
