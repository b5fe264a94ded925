package dto

// ScalingAction labels the direction of a scaling decision.
type ScalingAction string

const (
	ActionScaleOut ScalingAction = "SCALE_OUT"
	ActionScaleIn  ScalingAction = "SCALE_IN"
	ActionNoChange ScalingAction = "NO_CHANGE"
)

// ScalingDecision is the decision engine's output for a single service.
// TargetReplicas is meaningful only when Action is not ActionNoChange.
type ScalingDecision struct {
	Action         ScalingAction `json:"action"`
	TargetReplicas int32         `json:"target_replicas"`
	Reason         string        `json:"reason"`
}

// ShouldApply reports whether the decision requires an actuator call.
func (d ScalingDecision) ShouldApply() bool {
	return d.Action != ActionNoChange
}
