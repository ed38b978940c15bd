package ports

import "context"

type (
	// HealthChecker reports the state of the service dependencies.
	HealthChecker interface {
		IsHealthy(ctx context.Context) bool
		CheckDependencies(ctx context.Context) map[string]DependencyStatus
	}

	DependencyStatus struct {
		Healthy bool   `json:"healthy"`
		Message string `json:"message,omitempty"`
		Latency string `json:"latency,omitempty"`
	}
)
