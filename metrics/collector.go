package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"go-autoscaler-agent/dto"
)

// ErrNoData indicates a query succeeded but returned an empty result set,
// e.g. the service has never been scraped under that name.
var ErrNoData = errors.New("query returned no data")

// Collector fetches per-service runtime metrics from Prometheus.
//
// A failed retrieval is reported as an error, never as a zero-filled
// snapshot: the caller must be able to tell "the service is idle" apart
// from "the monitoring backend is down", otherwise a monitoring outage
// would look like an idle fleet and trigger scale-in.
type Collector struct {
	api     promv1.API
	timeout time.Duration
	logger  logr.Logger
}

// NewCollector creates a collector against the given Prometheus base URL.
func NewCollector(prometheusURL string, timeout time.Duration, logger logr.Logger) (*Collector, error) {
	client, err := api.NewClient(api.Config{Address: prometheusURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client: %w", err)
	}
	return &Collector{
		api:     promv1.NewAPI(client),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Fetch runs the three per-service queries (p95 latency, CPU utilization
// ratio and request rate, all over a 1-minute window) and returns a
// sanitized snapshot. Any query failure fails the whole fetch.
func (c *Collector) Fetch(ctx context.Context, serviceName string) (dto.MetricsSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	latency, err := c.queryScalar(ctx, latencyQuery(serviceName))
	if err != nil {
		return dto.MetricsSnapshot{}, fmt.Errorf("latency query for %s: %w", serviceName, err)
	}
	cpu, err := c.queryScalar(ctx, cpuQuery(serviceName))
	if err != nil {
		return dto.MetricsSnapshot{}, fmt.Errorf("cpu query for %s: %w", serviceName, err)
	}
	rps, err := c.queryScalar(ctx, rpsQuery(serviceName))
	if err != nil {
		return dto.MetricsSnapshot{}, fmt.Errorf("rps query for %s: %w", serviceName, err)
	}

	snapshot := Sanitize(dto.MetricsSnapshot{
		LatencyMS:   latency,
		CPUFraction: cpu,
		RPS:         rps,
	})
	if snapshot.IsZero() {
		c.logger.Info("All metrics are zero, service may be idle or unscraped",
			"service", serviceName)
	}
	return snapshot, nil
}

// Ping verifies the Prometheus backend is reachable.
func (c *Collector) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, _, err := c.api.Query(ctx, "up", time.Now()); err != nil {
		return fmt.Errorf("prometheus not reachable: %w", err)
	}
	return nil
}

// queryScalar runs an instant query expected to yield a single-sample
// vector and returns its value.
func (c *Collector) queryScalar(ctx context.Context, query string) (float64, error) {
	result, warnings, err := c.api.Query(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("query failed: %w", err)
	}
	if len(warnings) > 0 {
		c.logger.V(1).Info("Prometheus query warnings", "query", query, "warnings", warnings)
	}

	vector, ok := result.(model.Vector)
	if !ok {
		return 0, fmt.Errorf("unexpected result type %s", result.Type())
	}
	if vector.Len() == 0 {
		return 0, ErrNoData
	}
	return float64(vector[0].Value), nil
}

func latencyQuery(serviceName string) string {
	return fmt.Sprintf(
		`histogram_quantile(0.95, sum(rate(istio_request_duration_milliseconds_bucket{destination_service=~"%s.*"}[1m])) by (le))`,
		serviceName,
	)
}

func cpuQuery(serviceName string) string {
	return fmt.Sprintf(
		`sum(rate(container_cpu_usage_seconds_total{container="%s"}[1m])) / sum(kube_pod_container_resource_limits{resource="cpu", container="%s"})`,
		serviceName, serviceName,
	)
}

func rpsQuery(serviceName string) string {
	return fmt.Sprintf(
		`sum(rate(istio_requests_total{destination_service=~"%s.*"}[1m]))`,
		serviceName,
	)
}
