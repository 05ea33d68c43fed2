package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// sessionsActive tracks open WebSocket sessions.
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "faqnav",
		Subsystem: "sessions",
		Name:      "active",
		Help:      "Number of open navigation sessions",
	})

	// sessionsTotal counts sessions started.
	sessionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "faqnav",
		Subsystem: "sessions",
		Name:      "started_total",
		Help:      "Total navigation sessions started",
	})

	// sessionTerminations counts how sessions ended.
	// Labels: reason (peer_closed, shutdown, fault)
	sessionTerminations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "faqnav",
		Subsystem: "sessions",
		Name:      "terminations_total",
		Help:      "Total navigation sessions ended, by reason",
	}, []string{"reason"})

	// transitionsTotal counts processed messages.
	// Labels: outcome (see navigator.Outcome)
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "faqnav",
		Subsystem: "navigator",
		Name:      "transitions_total",
		Help:      "Total navigation transitions, by outcome",
	}, []string{"outcome"})

	// sessionDepth observes the history depth reached after each transition.
	sessionDepth = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "faqnav",
		Subsystem: "navigator",
		Name:      "depth",
		Help:      "History depth after each transition",
		Buckets:   []float64{0, 1, 2, 3, 4, 6, 8, 12},
	})

	// documentReloads counts FAQ reload attempts.
	// Labels: status (success, error)
	documentReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "faqnav",
		Subsystem: "faq",
		Name:      "reloads_total",
		Help:      "Total FAQ document reload attempts",
	}, []string{"status"})
)
