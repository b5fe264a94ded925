package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-autoscaler-agent/agent"
	"go-autoscaler-agent/config"
	"go-autoscaler-agent/health"
	"go-autoscaler-agent/k8s"
	"go-autoscaler-agent/logging"
	"go-autoscaler-agent/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Debug).WithName("autoscaler")

	targets := config.DefaultTargets(cfg.Namespace)
	if cfg.ServicesFile != "" {
		targets, err = config.LoadTargets(cfg.ServicesFile, cfg.Namespace)
		if err != nil {
			logger.Error(err, "Failed to load service registry")
			os.Exit(1)
		}
	}

	clientset, err := k8s.NewClientBuilder(logger).Build()
	if err != nil {
		logger.Error(err, "Failed to create Kubernetes client")
		os.Exit(1)
	}
	if err := k8s.NewHealthChecker(clientset, logger).Check(); err != nil {
		logger.Error(err, "Kubernetes control plane unreachable")
		os.Exit(1)
	}

	collector, err := metrics.NewCollector(cfg.PrometheusURL, cfg.PromTimeout, logger)
	if err != nil {
		logger.Error(err, "Failed to create Prometheus client")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Metrics retrieval failures are recoverable per cycle, so an
	// unreachable backend at startup is only worth a warning.
	if err := collector.Ping(ctx); err != nil {
		logger.Error(err, "Prometheus unreachable at startup, continuing")
	}

	scaler := k8s.NewScaler(clientset, cfg.Policy.MinReplicas, cfg.Policy.MaxReplicas, logger)
	telemetry := health.NewTelemetry()
	events := agent.NewEventLog(100)
	health.NewServer(cfg.HealthAddr, telemetry, events, scaler, targets, logger).Start(ctx)

	a := agent.New(cfg.Policy, cfg.PollInterval, targets, collector, scaler, telemetry, events, logger)
	a.Run(ctx)
}
