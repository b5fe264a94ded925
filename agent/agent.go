// Package agent runs the polling loop that ties the metrics source, the
// decision engine and the scaling actuator together.
package agent

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"go-autoscaler-agent/config"
	"go-autoscaler-agent/dto"
	"go-autoscaler-agent/engine"
	"go-autoscaler-agent/health"
)

// MetricsSource provides a fresh metrics snapshot for a service. An error
// means the metrics are unavailable this cycle, which is distinct from a
// legitimate all-zero snapshot.
type MetricsSource interface {
	Fetch(ctx context.Context, serviceName string) (dto.MetricsSnapshot, error)
}

// Actuator reads and writes a workload's replica count.
type Actuator interface {
	CurrentReplicas(ctx context.Context, namespace, name string) (int32, error)
	Scale(ctx context.Context, namespace, name string, targetReplicas int32) error
}

// Agent evaluates every registered service once per poll interval,
// strictly sequentially. It holds no state between cycles beyond the
// event log; each decision is recomputed from live cluster and metrics
// state.
type Agent struct {
	policy    config.Policy
	interval  time.Duration
	targets   []dto.ServiceTarget
	source    MetricsSource
	actuator  Actuator
	telemetry *health.Telemetry
	events    *EventLog
	logger    logr.Logger
}

// New creates an agent over the given registry.
func New(
	policy config.Policy,
	interval time.Duration,
	targets []dto.ServiceTarget,
	source MetricsSource,
	actuator Actuator,
	telemetry *health.Telemetry,
	events *EventLog,
	logger logr.Logger,
) *Agent {
	return &Agent{
		policy:    policy,
		interval:  interval,
		targets:   targets,
		source:    source,
		actuator:  actuator,
		telemetry: telemetry,
		events:    events,
		logger:    logger,
	}
}

// Run evaluates all services immediately and then once per interval until
// the context is cancelled. Cycles never overlap: the next tick is not
// consumed until the previous pass over the registry has finished.
func (a *Agent) Run(ctx context.Context) {
	a.logger.Info("Starting autoscaler loop",
		"interval", a.interval, "services", len(a.targets))

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		a.RunOnce(ctx)
		select {
		case <-ctx.Done():
			a.logger.Info("Stopping autoscaler loop")
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single evaluation pass over the registry. Services
// are independent units of work: a failure in one never blocks the rest.
func (a *Agent) RunOnce(ctx context.Context) {
	for _, target := range a.targets {
		a.evaluate(ctx, target)
	}
}

func (a *Agent) evaluate(ctx context.Context, target dto.ServiceTarget) {
	log := a.logger.WithValues(
		"service", target.ServiceName,
		"deployment", target.DeploymentName,
		"namespace", target.Namespace)

	snapshot, err := a.source.Fetch(ctx, target.ServiceName)
	if err != nil {
		// Unavailable metrics are not low load. Feeding zeros to the
		// engine here would scale in a healthy fleet during a monitoring
		// outage, so the service is skipped until the next cycle.
		log.Error(err, "Metrics unavailable, skipping service this cycle")
		a.telemetry.Errors.WithLabelValues(health.StageMetrics).Inc()
		return
	}

	current, err := a.actuator.CurrentReplicas(ctx, target.Namespace, target.DeploymentName)
	if err != nil {
		log.Error(err, "Failed to read current replicas, treating as 0")
		a.telemetry.Errors.WithLabelValues(health.StageRead).Inc()
		current = 0
	}

	log.V(1).Info("Collected metrics",
		"latencyMS", snapshot.LatencyMS,
		"cpu", snapshot.CPUFraction,
		"rps", snapshot.RPS,
		"replicas", current)

	decision := engine.Decide(snapshot, current, a.policy)
	a.telemetry.Decisions.WithLabelValues(string(decision.Action)).Inc()
	if !decision.ShouldApply() {
		log.V(1).Info("No scaling needed", "reason", decision.Reason)
		return
	}

	if err := a.actuator.Scale(ctx, target.Namespace, target.DeploymentName, decision.TargetReplicas); err != nil {
		// The previous replica count stays in effect; the next cycle will
		// recompute from live state.
		log.Error(err, "Failed to apply scaling decision",
			"target", decision.TargetReplicas)
		a.telemetry.Errors.WithLabelValues(health.StageWrite).Inc()
		return
	}

	log.Info("Applied scaling decision",
		"action", decision.Action,
		"from", current,
		"to", decision.TargetReplicas,
		"reason", decision.Reason)

	a.events.Add(dto.ScalingEvent{
		Timestamp:    time.Now(),
		Service:      target.ServiceName,
		Deployment:   target.DeploymentName,
		Namespace:    target.Namespace,
		FromReplicas: current,
		ToReplicas:   decision.TargetReplicas,
		Action:       decision.Action,
		Reason:       decision.Reason,
	})
}
