package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"go-autoscaler-agent/dto"
)

// DefaultTargets is the built-in service registry, used when no
// SERVICES_FILE is configured.
func DefaultTargets(namespace string) []dto.ServiceTarget {
	return []dto.ServiceTarget{
		{ServiceName: "admin-service", DeploymentName: "admin-service", Namespace: namespace},
		{ServiceName: "faculty-service", DeploymentName: "faculty-service", Namespace: namespace},
		{ServiceName: "student-service", DeploymentName: "student-service", Namespace: namespace},
	}
}

// LoadTargets reads the service registry from a YAML file. Entries without
// a namespace inherit the agent's default namespace.
//
// File format:
//
//	- serviceName: admin-service
//	  deploymentName: admin-service
//	  namespace: prod
func LoadTargets(path, defaultNamespace string) ([]dto.ServiceTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read services file: %w", err)
	}

	var targets []dto.ServiceTarget
	if err := yaml.Unmarshal(data, &targets); err != nil {
		return nil, fmt.Errorf("failed to parse services file %s: %w", path, err)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("services file %s contains no targets", path)
	}

	for i := range targets {
		if targets[i].ServiceName == "" || targets[i].DeploymentName == "" {
			return nil, fmt.Errorf("services file %s: entry %d is missing serviceName or deploymentName", path, i)
		}
		if targets[i].Namespace == "" {
			targets[i].Namespace = defaultNamespace
		}
	}
	return targets, nil
}
