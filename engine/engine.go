// Package engine implements the scaling decision algorithm: a pure,
// memoryless rule that converts a metrics snapshot plus the current replica
// count into a target replica count.
package engine

import (
	"fmt"
	"math"

	"go-autoscaler-agent/config"
	"go-autoscaler-agent/dto"
)

// scaleInRatio sets the upper edge of the scale-in band relative to the
// scale-out thresholds. The gap between the bands is a hysteresis dead
// zone: a metric sitting just under its threshold cannot trigger an
// immediate reversal after a scale-out.
const scaleInRatio = 0.69

// Decide evaluates the snapshot against the policy and returns a scaling
// decision for the given replica count.
//
// Branch order matters: scale-out wins over scale-in, and scale-in
// deliberately ignores the request rate so that low traffic alone never
// shrinks a fleet whose latency or CPU is still elevated.
func Decide(m dto.MetricsSnapshot, currentReplicas int32, p config.Policy) dto.ScalingDecision {
	switch {
	case m.LatencyMS > p.LatencyThresholdMS || m.CPUFraction > p.CPUThreshold || m.RPS > p.RPSThreshold:
		candidate := math.Ceil(float64(currentReplicas) * (1 + p.ScaleOutFactor))
		return conclude(dto.ActionScaleOut, candidate, currentReplicas, p, outReason(m, p))

	case m.LatencyMS < scaleInRatio*p.LatencyThresholdMS && m.CPUFraction < scaleInRatio*p.CPUThreshold:
		candidate := math.Floor(float64(currentReplicas) * (1 - p.ScaleInFactor))
		return conclude(dto.ActionScaleIn, candidate, currentReplicas, p,
			fmt.Sprintf("latency %.1fms and cpu %.2f below scale-in band", m.LatencyMS, m.CPUFraction))

	default:
		return dto.ScalingDecision{Action: dto.ActionNoChange, TargetReplicas: currentReplicas, Reason: "metrics within thresholds"}
	}
}

// conclude clamps the candidate to the policy bounds and collapses no-op
// results into NoChange.
func conclude(action dto.ScalingAction, candidate float64, current int32, p config.Policy, reason string) dto.ScalingDecision {
	target := clampCandidate(candidate, p)
	if target == current {
		return dto.ScalingDecision{Action: dto.ActionNoChange, TargetReplicas: current, Reason: reason}
	}
	return dto.ScalingDecision{Action: action, TargetReplicas: target, Reason: reason}
}

func outReason(m dto.MetricsSnapshot, p config.Policy) string {
	switch {
	case m.LatencyMS > p.LatencyThresholdMS:
		return fmt.Sprintf("latency %.1fms over threshold %.1fms", m.LatencyMS, p.LatencyThresholdMS)
	case m.CPUFraction > p.CPUThreshold:
		return fmt.Sprintf("cpu %.2f over threshold %.2f", m.CPUFraction, p.CPUThreshold)
	default:
		return fmt.Sprintf("rps %.1f over threshold %.1f", m.RPS, p.RPSThreshold)
	}
}

// clampCandidate restricts a raw candidate to [min, max], absorbing
// negative, non-finite and out-of-range values from extreme factors.
func clampCandidate(v float64, p config.Policy) int32 {
	if math.IsNaN(v) || v < float64(p.MinReplicas) {
		return p.MinReplicas
	}
	if v > float64(p.MaxReplicas) {
		return p.MaxReplicas
	}
	return int32(v)
}

// Clamp restricts a replica count to [min, max]. Both the decision engine
// and the actuator clamp, so a caller that bypasses Decide and drives the
// actuator directly still cannot exceed the administrative bounds.
func Clamp(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
