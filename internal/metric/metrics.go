package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// remote API calls, one observation per request
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Latency of calls to the restaurant API",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})

	// committed | payment_pending | failed | skipped
	CheckoutOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "outcomes_total",
		Help:      "Result of checkout commit attempts",
	}, []string{"outcome", "method"})

	CheckoutStepTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "step_transitions_total",
		Help:      "Wizard navigation, labelled by target step and result",
	}, []string{"step", "result"})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "storefront",
		Subsystem: "sessions",
		Name:      "active",
		Help:      "Checkout sessions currently held in memory",
	})

	// hit / miss
	MenuCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "cache",
		Name:      "menu_lookups_total",
		Help:      "Menu cache lookups",
	}, []string{"result"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Checkout notifications sent, by sink and status",
	}, []string{"sink", "status"})

	RequestMetrics = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  "storefront",
		Subsystem:  "http",
		Name:       "request",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	}, []string{"status"})
)

func ObserveAPI(operation string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	APIRequestDuration.WithLabelValues(operation, label).Observe(d.Seconds())
}

func ObserveRequest(t time.Duration, status int) {
	RequestMetrics.WithLabelValues(strconv.Itoa(status)).Observe(t.Seconds())
}
