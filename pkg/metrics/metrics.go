package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics aggregates the service's prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	CheckoutAttempts   *prometheus.CounterVec
	PaymentDeclines    prometheus.Counter
	RefundsIssued      *prometheus.CounterVec
	ReconciliationRows prometheus.Counter
	StatusTransitions  *prometheus.CounterVec
	CheckoutDuration   prometheus.Histogram
	NotificationErrors *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	registry.MustRegister(collectors.NewGoCollector())

	return &Metrics{
		registry: registry,
		CheckoutAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "truckbites",
			Subsystem: "checkout",
			Name:      "attempts_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		PaymentDeclines: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "truckbites",
			Subsystem: "payments",
			Name:      "declines_total",
			Help:      "Card charges declined by the gateway.",
		}),
		RefundsIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "truckbites",
			Subsystem: "payments",
			Name:      "refunds_total",
			Help:      "Refunds issued by trigger.",
		}, []string{"trigger"}),
		ReconciliationRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "truckbites",
			Subsystem: "payments",
			Name:      "reconciliation_rows_total",
			Help:      "Charges flagged for manual reconciliation.",
		}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "truckbites",
			Subsystem: "orders",
			Name:      "status_transitions_total",
			Help:      "Order status transitions by target status.",
		}, []string{"to"}),
		CheckoutDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "truckbites",
			Subsystem: "checkout",
			Name:      "duration_seconds",
			Help:      "End to end checkout latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		NotificationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "truckbites",
			Subsystem: "notifications",
			Name:      "errors_total",
			Help:      "Notification delivery failures by channel.",
		}, []string{"channel"}),
	}
}

// Handler serves the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
