package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every router metric unless configured otherwise
const DefaultNamespace = "bestroute"

// RouterMetrics instruments quote dispatch and trade selection.
// A nil *RouterMetrics is valid and records nothing.
type RouterMetrics struct {
	QuoteRequests     prometheus.Counter
	QuoteFailures     prometheus.Counter
	QuoteInvalid      prometheus.Counter
	QuoteLatency      prometheus.Histogram
	TradeComputations *prometheus.CounterVec
}

// NewRouterMetrics registers the router metrics on reg. A nil reg leaves them unregistered.
func NewRouterMetrics(namespace string, reg prometheus.Registerer) *RouterMetrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &RouterMetrics{
		QuoteRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_requests_total",
			Help:      "Total number of quotes sent to the oracle",
		}),
		QuoteFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_failures_total",
			Help:      "Total number of quotes the oracle rejected",
		}),
		QuoteInvalid: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_invalid_total",
			Help:      "Total number of quotes skipped for lack of a usable amount",
		}),
		QuoteLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_latency_seconds",
			Help:      "Oracle round trip latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		TradeComputations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trade_computations_total",
			Help:      "Total number of best trade computations by resulting state",
		}, []string{"state"}),
	}
}

func (m *RouterMetrics) ObserveQuote(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.QuoteRequests.Inc()
	m.QuoteLatency.Observe(elapsed.Seconds())
	if err != nil {
		m.QuoteFailures.Inc()
	}
}

func (m *RouterMetrics) ObserveInvalid(n int) {
	if m == nil {
		return
	}
	m.QuoteInvalid.Add(float64(n))
}

func (m *RouterMetrics) ObserveComputation(state string) {
	if m == nil {
		return
	}
	m.TradeComputations.WithLabelValues(state).Inc()
}
