package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sale outcomes used as the outcome label.
const (
	OutcomeSuccess           = "success"
	OutcomeRejected          = "rejected"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeFailed            = "failed"
	OutcomeIncomplete        = "incomplete"
	OutcomePartial           = "partial_inventory"
)

// SalesMetrics instruments the sale recording workflow.
type SalesMetrics struct {
	recorded          *prometheus.CounterVec
	duration          prometheus.Histogram
	decrementFailures prometheus.Counter
}

func NewSalesMetrics(reg prometheus.Registerer) *SalesMetrics {
	if reg == nil {
		return &SalesMetrics{}
	}
	recorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "directsales_sales_recorded_total",
		Help: "Sale recording attempts by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "directsales_sale_record_duration_seconds",
		Help:    "Time spent recording a sale.",
		Buckets: prometheus.DefBuckets,
	})
	decrementFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "directsales_inventory_decrement_failures_total",
		Help: "Inventory decrements that failed after the sale was persisted.",
	})
	reg.MustRegister(recorded, duration, decrementFailures)
	return &SalesMetrics{
		recorded:          recorded,
		duration:          duration,
		decrementFailures: decrementFailures,
	}
}

func (m *SalesMetrics) ObserveSale(outcome string, elapsed time.Duration) {
	if m == nil || m.recorded == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.recorded.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *SalesMetrics) AddDecrementFailures(n int) {
	if m == nil || m.decrementFailures == nil || n <= 0 {
		return
	}
	m.decrementFailures.Add(float64(n))
}

// OutboxMetrics tracks the publisher loop.
type OutboxMetrics struct {
	published *prometheus.CounterVec
}

func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "directsales_outbox_events_total",
		Help: "Outbox rows processed by result.",
	}, []string{"event_type", "result"})
	reg.MustRegister(published)
	return &OutboxMetrics{published: published}
}

// Observe records one processed row; result is published, retry or dead_letter.
func (m *OutboxMetrics) Observe(eventType, result string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType), result).Inc()
}
