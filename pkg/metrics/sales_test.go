package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestSalesMetricsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSalesMetrics(reg)
	m.ObserveSale(OutcomeSuccess, 10*time.Millisecond)
	m.ObserveSale(OutcomeSuccess, 10*time.Millisecond)
	m.ObserveSale(OutcomePartial, 10*time.Millisecond)
	m.AddDecrementFailures(3)
	m.AddDecrementFailures(0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "directsales_sales_recorded_total", "outcome", OutcomeSuccess); err != nil || got != 2 {
		t.Fatalf("expected success=2, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "directsales_sales_recorded_total", "outcome", OutcomePartial); err != nil || got != 1 {
		t.Fatalf("expected partial=1, got %f (%v)", got, err)
	}
	mf := findMetricFamily(mfs, "directsales_inventory_decrement_failures_total")
	if mf == nil || mf.GetMetric()[0].GetCounter().GetValue() != 3 {
		t.Fatalf("expected 3 decrement failures")
	}
	hist := findMetricFamily(mfs, "directsales_sale_record_duration_seconds")
	if hist == nil || hist.GetMetric()[0].GetHistogram().GetSampleCount() != 3 {
		t.Fatalf("expected 3 duration samples")
	}
}

func TestOutboxMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)
	m.Observe("sale_recorded", "published")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "directsales_outbox_events_total", "result", "published"); err != nil || got != 1 {
		t.Fatalf("expected published=1, got %f (%v)", got, err)
	}
}

func TestNilSalesMetrics(t *testing.T) {
	var m *SalesMetrics
	m.ObserveSale(OutcomeFailed, time.Second)
	m.AddDecrementFailures(1)
	NewSalesMetrics(nil).ObserveSale(OutcomeFailed, time.Second)
	var o *OutboxMetrics
	o.Observe("x", "y")
}

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe("POST", "/api/v1/sales", 201, 5*time.Millisecond)
	m.Observe("GET", "", 404, time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "directsales_http_requests_total", "route", "/api/v1/sales"); err != nil || got != 1 {
		t.Fatalf("expected sales route=1, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "directsales_http_requests_total", "route", "unmatched"); err != nil || got != 1 {
		t.Fatalf("expected unmatched=1, got %f (%v)", got, err)
	}
	var nilMetrics *HTTPMetrics
	nilMetrics.Observe("GET", "/", 200, time.Millisecond)
}
