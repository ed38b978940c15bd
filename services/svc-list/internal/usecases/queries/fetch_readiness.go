package queries

import (
	"context"

	"github.com/architeacher/device-list/pkg/decorator"
	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/pkg/metrics"
	"github.com/architeacher/device-list/services/svc-list/internal/ports"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	FetchReadinessQuery struct{}

	ReadinessResult struct {
		Status       string                            `json:"status"`
		Ready        bool                              `json:"ready"`
		Dependencies map[string]ports.DependencyStatus `json:"dependencies,omitempty"`
	}

	FetchReadinessQueryHandler = decorator.QueryHandler[FetchReadinessQuery, *ReadinessResult]

	fetchReadinessQueryHandler struct {
		healthChecker ports.HealthChecker
	}
)

func (FetchReadinessQuery) ActionName() string { return "readiness" }

// IsDegraded reports a not-ready result so the query decorators flag it.
func (r *ReadinessResult) IsDegraded() bool {
	return r != nil && !r.Ready
}

func NewFetchReadinessQueryHandler(
	healthChecker ports.HealthChecker,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchReadinessQueryHandler {
	return decorator.ApplyQueryDecorators[FetchReadinessQuery, *ReadinessResult](
		fetchReadinessQueryHandler{healthChecker: healthChecker},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h fetchReadinessQueryHandler) Execute(ctx context.Context, _ FetchReadinessQuery) (*ReadinessResult, error) {
	dependencies := h.healthChecker.CheckDependencies(ctx)

	for _, status := range dependencies {
		if !status.Healthy {
			return &ReadinessResult{
				Status:       "unavailable",
				Ready:        false,
				Dependencies: dependencies,
			}, nil
		}
	}

	return &ReadinessResult{
		Status:       "ok",
		Ready:        true,
		Dependencies: dependencies,
	}, nil
}
