package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AccessMetrics counts access-control decisions.
type AccessMetrics struct {
	decisions *prometheus.CounterVec
}

// NewAccessMetrics registers the access decision counter on reg. A nil
// registerer yields a no-op recorder.
func NewAccessMetrics(reg prometheus.Registerer) *AccessMetrics {
	if reg == nil {
		return &AccessMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "access_decisions_total",
		Help: "Access guard decisions by scope, outcome and reason.",
	}, []string{"scope", "outcome", "reason"})
	reg.MustRegister(decisions)
	return &AccessMetrics{decisions: decisions}
}

// ObserveDecision records one guard decision.
func (m *AccessMetrics) ObserveDecision(scope, outcome, reason string) {
	if m == nil || m.decisions == nil {
		return
	}
	m.decisions.WithLabelValues(normalizeLabel(scope), normalizeLabel(outcome), normalizeLabel(reason)).Inc()
}

// LeadMetrics counts public intake submissions.
type LeadMetrics struct {
	submitted *prometheus.CounterVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	if reg == nil {
		return &LeadMetrics{}
	}
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leads_submitted_total",
		Help: "Intake form submissions by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(submitted)
	return &LeadMetrics{submitted: submitted}
}

// IncSubmitted increments the submission counter for outcome.
func (m *LeadMetrics) IncSubmitted(outcome string) {
	if m == nil || m.submitted == nil {
		return
	}
	m.submitted.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// HTTPMetrics records request latency per route pattern.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration)
	return &HTTPMetrics{duration: duration}
}

// ObserveRequest records one served request.
func (m *HTTPMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(method), normalizeLabel(route), strconv.Itoa(status)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
