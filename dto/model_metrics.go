package dto

// MetricsSnapshot holds one cycle's worth of runtime metrics for a service.
// Snapshots are produced fresh every poll, nothing is persisted between
// cycles.
type MetricsSnapshot struct {
	LatencyMS   float64 `json:"latency_ms"`
	CPUFraction float64 `json:"cpu_fraction"`
	RPS         float64 `json:"rps"`
}

// IsZero reports whether every dimension of the snapshot is zero, which
// usually means the service is idle or the backend has no samples yet.
func (m MetricsSnapshot) IsZero() bool {
	return m.LatencyMS == 0 && m.CPUFraction == 0 && m.RPS == 0
}
