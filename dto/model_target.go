package dto

// ServiceTarget ties a monitored service to the Deployment it scales.
// Targets are static configuration, built at startup and never mutated.
type ServiceTarget struct {
	ServiceName    string `json:"serviceName"`
	DeploymentName string `json:"deploymentName"`
	Namespace      string `json:"namespace,omitempty"`
}
