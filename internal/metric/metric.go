package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "checkout"

const (
	LabelOutcome = "outcome"
	LabelResult  = "result"
)

type Metrics struct {
	registry *prometheus.Registry

	PaymentOutcomes      *prometheus.CounterVec
	CouponResults        *prometheus.CounterVec
	ActiveSessions       prometheus.Gauge
	VerificationDuration prometheus.Histogram
}

// New registers the checkout collectors, plus the go and process collectors,
// on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		PaymentOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_outcomes_total",
			Help:      "Payment sheets that reached a terminal phase, by phase.",
		}, []string{LabelOutcome}),
		CouponResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_attempts_total",
			Help:      "Coupon submissions, by result.",
		}, []string{LabelResult}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Checkout sessions currently held in memory.",
		}),
		VerificationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payment_verification_duration_seconds",
			Help:      "Time spent verifying an authorized payment.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
