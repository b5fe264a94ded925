package dto

import "time"

type DeploymentStatus struct {
	Name                string `json:"name"`
	Namespace           string `json:"namespace"`
	DesiredReplicas     int32  `json:"desiredReplicas"`
	CurrentReplicas     int32  `json:"currentReplicas"`
	AvailableReplicas   int32  `json:"availableReplicas"`
	UnavailableReplicas int32  `json:"unavailableReplicas"`
	UpdatedReplicas     int32  `json:"updatedReplicas"`
	ReadyReplicas       int32  `json:"readyReplicas"`
}

// IsHealthy returns true if the deployment has reached the desired replicas
// and has no unavailable replicas.
func (ds DeploymentStatus) IsHealthy() bool {
	return ds.DesiredReplicas == ds.AvailableReplicas &&
		ds.UnavailableReplicas == 0
}

// IsScaling returns true if the deployment is not yet fully at desired state.
func (ds DeploymentStatus) IsScaling() bool {
	return ds.CurrentReplicas != ds.DesiredReplicas ||
		ds.UpdatedReplicas != ds.DesiredReplicas
}

// ScalingEvent records one applied scaling decision for the events endpoint.
type ScalingEvent struct {
	Timestamp    time.Time     `json:"timestamp"`
	Service      string        `json:"service"`
	Deployment   string        `json:"deployment"`
	Namespace    string        `json:"namespace"`
	FromReplicas int32         `json:"fromReplicas"`
	ToReplicas   int32         `json:"toReplicas"`
	Action       ScalingAction `json:"action"`
	Reason       string        `json:"reason"`
}
