package runtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/pkg/metrics"
	"github.com/architeacher/device-list/services/svc-list/internal/config"
	"github.com/architeacher/device-list/services/svc-list/internal/ports"
	"github.com/architeacher/device-list/services/svc-list/internal/services"
	"github.com/architeacher/device-list/services/svc-list/internal/usecases"
	"github.com/throttled/throttled/v2"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	infrastructureDep struct {
		httpServer     *http.Server
		logger         logger.Logger
		metricsClient  metrics.Client
		tracerProvider otelTrace.TracerProvider
		rateLimitStore throttled.GCRAStoreCtx
	}

	repositories struct {
		secretsRepo ports.SecretsRepository
		listBackend ports.ListBackend
	}

	dependencies struct {
		config          *config.ServiceConfig
		configOverrides []func(*config.ServiceConfig)

		infra infrastructureDep

		repos repositories

		listService   *services.ListService
		healthChecker ports.HealthChecker
		app           *usecases.Application

		cleanupFuncs map[string]func(ctx context.Context) error
		cleanupOrder []string
	}

	DependencyOption func(*dependencies) error
)

func initializeDependencies(overrides []func(*config.ServiceConfig), opts ...DependencyOption) (*dependencies, error) {
	deps := &dependencies{
		configOverrides: overrides,
		cleanupFuncs:    make(map[string]func(ctx context.Context) error),
	}

	for _, opt := range opts {
		if err := opt(deps); err != nil {
			deps.cleanup(context.Background())

			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	return deps, nil
}

func (d *dependencies) addCleanup(resource string, fn func(ctx context.Context) error) {
	if _, exists := d.cleanupFuncs[resource]; !exists {
		d.cleanupOrder = append(d.cleanupOrder, resource)
	}

	d.cleanupFuncs[resource] = fn
}

// cleanup releases resources in reverse registration order.
func (d *dependencies) cleanup(ctx context.Context) {
	for i := len(d.cleanupOrder) - 1; i >= 0; i-- {
		resource := d.cleanupOrder[i]

		if err := d.cleanupFuncs[resource](ctx); err != nil {
			d.infra.logger.Error().
				Err(err).
				Str("resource", resource).
				Msg("failed to shutdown the resource gracefully")
		}
	}

	d.cleanupOrder = nil
	clear(d.cleanupFuncs)
}
