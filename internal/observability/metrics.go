// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Session event labels for accountd_sessions_total.
const (
	SessionIssued   = "issued"
	SessionRevoked  = "revoked"
	SessionRejected = "rejected"
)

// sessionEvents is package-level so the session service can record events
// without holding a reference to the Server.
var sessionEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "accountd",
		Name:      "sessions_total",
		Help:      "Access token events by kind.",
	},
	[]string{"event"},
)

// RecordSessionEvent increments the session event counter.
func RecordSessionEvent(event string) {
	sessionEvents.WithLabelValues(event).Inc()
}

// Metrics holds the HTTP API collectors.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the HTTP API collectors and registers them, together
// with the session counter, on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "accountd",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP API requests by route pattern and status.",
			},
			[]string{"route", "status"},
		),
		// Login runs argon2id, so the buckets reach well past typical
		// handler latency.
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "accountd",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP API latency by route pattern.",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"route"},
		),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, sessionEvents)
	return m
}

// RecordRequest counts one served request and observes its latency.
// Safe on a nil receiver.
func (m *Metrics) RecordRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
