package k8s

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"

	"go-autoscaler-agent/dto"
	"go-autoscaler-agent/engine"
)

// Scaler applies replica targets to Deployments. It clamps every target to
// the administrative bounds itself, independently of the decision engine,
// so a caller that skips the engine cannot push the fleet out of bounds.
type Scaler struct {
	clientset   kubernetes.Interface
	minReplicas int32
	maxReplicas int32
	logger      logr.Logger
}

// NewScaler creates a new scaler bounded to [minReplicas, maxReplicas].
func NewScaler(clientset kubernetes.Interface, minReplicas, maxReplicas int32, logger logr.Logger) *Scaler {
	return &Scaler{
		clientset:   clientset,
		minReplicas: minReplicas,
		maxReplicas: maxReplicas,
		logger:      logger,
	}
}

// Scale sets the deployment's replica count to the clamped target. Writing
// a count the deployment already has is a no-op, not an error. Only
// spec.replicas is written; concurrent modifications to other fields are
// left alone, and a conflicting replica write is last-write-wins.
func (s *Scaler) Scale(ctx context.Context, namespace, name string, targetReplicas int32) error {
	clamped := engine.Clamp(targetReplicas, s.minReplicas, s.maxReplicas)
	if clamped != targetReplicas {
		s.logger.V(1).Info("Clamped replica target",
			"deployment", name, "requested", targetReplicas, "clamped", clamped)
	}

	deployment, err := s.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("failed to get deployment %s/%s: %w", namespace, name, err)
	}

	current := int32(0)
	if deployment.Spec.Replicas != nil {
		current = *deployment.Spec.Replicas
	}
	if current == clamped {
		s.logger.V(1).Info("Deployment already at target",
			"deployment", name, "replicas", current)
		return nil
	}

	patch := fmt.Sprintf(`{"spec":{"replicas":%d}}`, clamped)
	if _, err := s.clientset.AppsV1().Deployments(namespace).Patch(
		ctx, name, types.MergePatchType, []byte(patch), metav1.PatchOptions{},
	); err != nil {
		return fmt.Errorf("failed to patch deployment %s/%s: %w", namespace, name, err)
	}

	s.logger.Info("Scaled deployment",
		"deployment", name,
		"namespace", namespace,
		"from", current,
		"to", clamped)
	return nil
}

// CurrentReplicas returns the deployment's configured replica count, 0 when
// the field is unset.
func (s *Scaler) CurrentReplicas(ctx context.Context, namespace, name string) (int32, error) {
	deployment, err := s.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to get deployment %s/%s: %w", namespace, name, err)
	}

	if deployment.Spec.Replicas == nil {
		return 0, nil
	}
	return *deployment.Spec.Replicas, nil
}

// Status returns a rollout status projection of the deployment.
func (s *Scaler) Status(ctx context.Context, namespace, name string) (dto.DeploymentStatus, error) {
	deployment, err := s.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return dto.DeploymentStatus{}, fmt.Errorf("failed to get deployment %s/%s: %w", namespace, name, err)
	}

	status := dto.DeploymentStatus{
		Name:                deployment.Name,
		Namespace:           deployment.Namespace,
		CurrentReplicas:     deployment.Status.Replicas,
		AvailableReplicas:   deployment.Status.AvailableReplicas,
		UnavailableReplicas: deployment.Status.UnavailableReplicas,
		UpdatedReplicas:     deployment.Status.UpdatedReplicas,
		ReadyReplicas:       deployment.Status.ReadyReplicas,
	}
	if deployment.Spec.Replicas != nil {
		status.DesiredReplicas = *deployment.Spec.Replicas
	}
	return status, nil
}
