package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestAccessMetricsCountsDecisions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAccessMetrics(reg)
	m.ObserveDecision("tenant", "denied", "forbidden")
	m.ObserveDecision("tenant", "denied", "forbidden")
	m.ObserveDecision("admin", "authorized", "")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	got, err := fetchCounterValue(mfs, "access_decisions_total", map[string]string{"scope": "tenant", "outcome": "denied", "reason": "forbidden"})
	if err != nil {
		t.Fatalf("fetch denied: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2 denials, got %f", got)
	}

	got, err = fetchCounterValue(mfs, "access_decisions_total", map[string]string{"scope": "admin", "outcome": "authorized", "reason": "unknown"})
	if err != nil {
		t.Fatalf("fetch authorized: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected 1 authorization, got %f", got)
	}
}

func TestLeadMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)
	m.IncSubmitted("created")
	m.IncSubmitted("rejected")
	m.IncSubmitted("created")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "leads_submitted_total", map[string]string{"outcome": "created"}); err != nil {
		t.Fatalf("fetch created: %v", err)
	} else if got != 2 {
		t.Fatalf("expected created=2, got %f", got)
	}
}

func TestHTTPMetricsObservesDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.ObserveRequest("GET", "/api/v1/firms/{tenantSlug}", 200, 120*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	mf := findMetricFamily(mfs, "http_request_duration_seconds")
	if mf == nil || len(mf.GetMetric()) != 1 {
		t.Fatalf("expected one histogram series")
	}
	if sum := mf.GetMetric()[0].GetHistogram().GetSampleSum(); sum <= 0 {
		t.Fatalf("expected positive duration sum, got %f", sum)
	}
}

func TestNilRegistererIsNoop(t *testing.T) {
	NewAccessMetrics(nil).ObserveDecision("tenant", "denied", "error")
	NewLeadMetrics(nil).IncSubmitted("created")
	NewHTTPMetrics(nil).ObserveRequest("GET", "/", 200, time.Second)

	var nilAccess *AccessMetrics
	nilAccess.ObserveDecision("tenant", "denied", "error")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok {
			if v != pair.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
