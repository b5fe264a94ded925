package metrics

import (
	"math"

	"go-autoscaler-agent/dto"
)

// Sanitize bounds a snapshot to the decision engine's input domain: every
// dimension is a finite number >= 0. Histogram quantiles yield NaN when no
// buckets were observed in the window, and counter resets can produce
// negative rates; both collapse to zero rather than poisoning a decision.
func Sanitize(m dto.MetricsSnapshot) dto.MetricsSnapshot {
	m.LatencyMS = sanitizeValue(m.LatencyMS)
	m.CPUFraction = sanitizeValue(m.CPUFraction)
	m.RPS = sanitizeValue(m.RPS)
	return m
}

func sanitizeValue(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
