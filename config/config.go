package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Policy holds the scaling thresholds, factors and bounds the decision
// engine evaluates against. It is loaded once at startup and read-only for
// the life of the process.
type Policy struct {
	LatencyThresholdMS float64
	CPUThreshold       float64
	RPSThreshold       float64
	ScaleOutFactor     float64
	ScaleInFactor      float64
	MinReplicas        int32
	MaxReplicas        int32
}

type Config struct {
	Policy Policy

	// External endpoints (use in-cluster DNS names in K8s)
	PrometheusURL string
	PromTimeout   time.Duration

	// Loop
	PollInterval time.Duration

	// Registry
	Namespace    string
	ServicesFile string

	// Health/telemetry listener
	HealthAddr string

	Debug bool
}

// Load reads configuration from environment variables (K8s style). Any
// value that fails to parse is a fatal startup error.
func Load() (Config, error) {
	cfg := Config{
		PrometheusURL: getenv("PROMETHEUS_URL", "http://prometheus-server.monitoring.svc.cluster.local:9090"),
		Namespace:     getenv("NAMESPACE", "default"),
		ServicesFile:  getenv("SERVICES_FILE", ""),
		HealthAddr:    getenv("HEALTH_ADDR", ":8080"),
	}

	var err error
	if cfg.Policy.LatencyThresholdMS, err = envFloat("LATENCY_THRESHOLD_MS", 300); err != nil {
		return Config{}, err
	}
	if cfg.Policy.CPUThreshold, err = envFloat("CPU_THRESHOLD", 0.7); err != nil {
		return Config{}, err
	}
	if cfg.Policy.RPSThreshold, err = envFloat("RPS_THRESHOLD", 200); err != nil {
		return Config{}, err
	}
	if cfg.Policy.ScaleOutFactor, err = envFloat("SCALE_OUT_FACTOR", 0.2); err != nil {
		return Config{}, err
	}
	if cfg.Policy.ScaleInFactor, err = envFloat("SCALE_IN_FACTOR", 0.15); err != nil {
		return Config{}, err
	}
	if cfg.Policy.MinReplicas, err = envInt32("MIN_REPLICAS", 2); err != nil {
		return Config{}, err
	}
	if cfg.Policy.MaxReplicas, err = envInt32("MAX_REPLICAS", 50); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = envDuration("POLL_INTERVAL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PromTimeout, err = envDuration("PROM_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Debug, err = envBool("DEBUG", false); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(c Config) error {
	p := c.Policy
	if p.LatencyThresholdMS <= 0 {
		return fmt.Errorf("LATENCY_THRESHOLD_MS must be > 0")
	}
	if p.CPUThreshold <= 0 || p.CPUThreshold > 1 {
		return fmt.Errorf("CPU_THRESHOLD must be in (0,1]")
	}
	if p.RPSThreshold <= 0 {
		return fmt.Errorf("RPS_THRESHOLD must be > 0")
	}
	if p.ScaleOutFactor <= 0 {
		return fmt.Errorf("SCALE_OUT_FACTOR must be > 0")
	}
	if p.ScaleInFactor < 0 || p.ScaleInFactor >= 1 {
		return fmt.Errorf("SCALE_IN_FACTOR must be in [0,1)")
	}
	if p.MinReplicas < 0 {
		return fmt.Errorf("MIN_REPLICAS must be >= 0")
	}
	if p.MaxReplicas < p.MinReplicas {
		return fmt.Errorf("MAX_REPLICAS must be >= MIN_REPLICAS")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be > 0")
	}
	if c.PromTimeout <= 0 {
		return fmt.Errorf("PROM_TIMEOUT must be > 0")
	}
	if c.PrometheusURL == "" {
		return fmt.Errorf("PROMETHEUS_URL cannot be empty")
	}
	return nil
}

// -------- env helpers --------

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return f, nil
}

func envInt32(key string, def int32) (int32, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return int32(n), nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q", key, v)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	// Accept plain seconds for compatibility with older deployments.
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return d, nil
}
