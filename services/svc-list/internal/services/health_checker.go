package services

import (
	"context"
	"time"

	"github.com/architeacher/device-list/services/svc-list/internal/ports"
)

// BackendHealthChecker reports readiness from a ping against the list backend.
type BackendHealthChecker struct {
	backend ports.ListBackend
	timeout time.Duration
}

func NewBackendHealthChecker(backend ports.ListBackend, timeout time.Duration) *BackendHealthChecker {
	return &BackendHealthChecker{backend: backend, timeout: timeout}
}

func (c *BackendHealthChecker) IsHealthy(ctx context.Context) bool {
	for _, status := range c.CheckDependencies(ctx) {
		if !status.Healthy {
			return false
		}
	}

	return true
}

func (c *BackendHealthChecker) CheckDependencies(ctx context.Context) map[string]ports.DependencyStatus {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)

		defer cancel()
	}

	start := time.Now()
	err := c.backend.Ping(ctx)

	status := ports.DependencyStatus{
		Healthy: err == nil,
		Latency: time.Since(start).String(),
	}

	if err != nil {
		status.Message = err.Error()
	}

	return map[string]ports.DependencyStatus{c.backend.Name(): status}
}
