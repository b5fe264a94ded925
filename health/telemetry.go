// Package health exposes the agent's liveness, recent scaling events and
// self-telemetry over HTTP.
package health

import "github.com/prometheus/client_golang/prometheus"

// Error stages reported by the evaluation loop.
const (
	StageMetrics = "metrics"
	StageRead    = "read"
	StageWrite   = "write"
)

// Telemetry holds the agent's own Prometheus metrics on a dedicated
// registry, so the scrape surface contains nothing but what the agent
// registers itself.
type Telemetry struct {
	Registry  *prometheus.Registry
	Decisions *prometheus.CounterVec
	Errors    *prometheus.CounterVec
}

func NewTelemetry() *Telemetry {
	decisions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "autoscaler",
			Name:      "decisions_total",
			Help:      "Scaling decisions taken, labeled by action.",
		},
		[]string{"action"},
	)
	errors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "autoscaler",
			Name:      "errors_total",
			Help:      "Per-service evaluation errors, labeled by stage.",
		},
		[]string{"stage"},
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(decisions, errors)

	return &Telemetry{
		Registry:  registry,
		Decisions: decisions,
		Errors:    errors,
	}
}
