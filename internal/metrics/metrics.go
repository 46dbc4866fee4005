// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wordmastery"

var (
	// AttemptsIngested counts ingested attempts.
	// Labels: outcome (applied, duplicate, dropped, rejected, error)
	AttemptsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingest",
		Name:      "attempts_total",
		Help:      "Word attempts received, by outcome",
	}, []string{"outcome"})

	// SessionsStarted counts started sessions.
	// Labels: game_type
	SessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "started_total",
		Help:      "Game sessions started, by game type",
	}, []string{"game_type"})

	// SessionsEnded counts sessions leaving the open state.
	// Labels: state (closed, closed_incomplete)
	SessionsEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "ended_total",
		Help:      "Game sessions ended, by final state",
	}, []string{"state"})

	// AnalysisDuration measures weak-words analysis computation time.
	// Labels: cache (hit, miss)
	AnalysisDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "analysis",
		Name:      "duration_seconds",
		Help:      "Time to produce a weak-words analysis",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"cache"})

	// HTTPRequests counts HTTP requests.
	// Labels: route, method, status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route pattern, method and status",
	}, []string{"route", "method", "status"})

	// HTTPDuration measures HTTP request latency.
	// Labels: route, method
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
)
