package utils

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counters exposed on the health server's /metrics endpoint.
var (
	CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "racemaster_commands_total",
		Help: "Slash commands handled, by command name.",
	}, []string{"command"})

	ComponentActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "racemaster_component_actions_total",
		Help: "Button interactions handled, by action kind.",
	}, []string{"action"})

	CollaboratorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "racemaster_collaborator_failures_total",
		Help: "Best-effort external calls that failed after state was committed.",
	}, []string{"collaborator"})

	HandlerPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "racemaster_handler_panics_total",
		Help: "Interaction handlers recovered from a panic.",
	})
)

// MetricsHandler returns the prometheus scrape handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
