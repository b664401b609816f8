package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Action outcomes
const (
	OutcomeAccepted = "accepted"
	OutcomeIgnored  = "ignored"
	OutcomeError    = "error"
)

var (
	ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firefades_actions_total",
		Help: "Player actions processed by game sessions, by action and outcome.",
	}, []string{"action", "outcome"})

	GamesFinishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firefades_games_finished_total",
		Help: "Games that reached a result, by winning faction.",
	}, []string{"winner"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "firefades_active_sessions",
		Help: "Game sessions currently running.",
	})
)
