// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes used as the "outcome" label.
const (
	outcomeOK         = "ok"
	outcomeBadRequest = "bad_request"
	outcomeError      = "error"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration prometheus.Histogram
	Rewrites prometheus.Histogram
	Failures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "digest_requests_total",
				Help: "Total number of summarize requests by outcome",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "digest_request_duration_seconds",
				Help:    "Duration of summarize requests",
				Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
			},
		),
		Rewrites: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "digest_rewrites",
				Help:    "Summary rewrites per successful run",
				Buckets: []float64{0, 1, 2, 3, 5},
			},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "digest_step_failures_total",
				Help: "Failed runs by the step that failed",
			},
			[]string{"step"},
		),
	}
	reg.MustRegister(m.Requests, m.Duration, m.Rewrites, m.Failures)
	return m
}
