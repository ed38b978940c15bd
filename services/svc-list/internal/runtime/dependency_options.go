package runtime

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/pkg/metrics/noop"
	"github.com/architeacher/device-list/pkg/metrics/prometheus"
	"github.com/architeacher/device-list/services/svc-list/internal/adapters/backends"
	inboundhttp "github.com/architeacher/device-list/services/svc-list/internal/adapters/inbound/http"
	"github.com/architeacher/device-list/services/svc-list/internal/adapters/repos"
	"github.com/architeacher/device-list/services/svc-list/internal/config"
	"github.com/architeacher/device-list/services/svc-list/internal/infrastructure"
	"github.com/architeacher/device-list/services/svc-list/internal/services"
	"github.com/architeacher/device-list/services/svc-list/internal/usecases"
	"github.com/hashicorp/vault/api"
	"github.com/throttled/throttled/v2/store/memstore"
)

const readinessTimeout = 3 * time.Second

// storageOptions wire everything up to the application layer.
func storageOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithConfig(),
		WithLogger(),
		WithSecretsRepository(),
		WithConfigLoader(ctx),
		WithMetrics(),
		WithTracing(ctx),
		WithListBackend(ctx),
		WithListService(),
		WithApplication(),
	}
}

func defaultOptions(ctx context.Context) []DependencyOption {
	return append(storageOptions(ctx),
		WithRateLimitStore(),
		WithHTTPServer(),
	)
}

func WithConfig() DependencyOption {
	return func(d *dependencies) error {
		cfg, err := config.Init()
		if err != nil {
			return fmt.Errorf("initializing configuration: %w", err)
		}

		for _, override := range d.configOverrides {
			override(cfg)
		}

		d.config = cfg

		return nil
	}
}

func WithLogger() DependencyOption {
	return func(d *dependencies) error {
		d.infra.logger = logger.New(d.config.Logging.Level, d.config.Logging.Format)

		return nil
	}
}

func WithSecretsRepository() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.SecretsStorage.Enabled {
			return nil
		}

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = d.config.SecretsStorage.Address
		vaultConfig.Timeout = d.config.SecretsStorage.Timeout

		if d.config.SecretsStorage.TLSSkipVerify {
			vaultConfig.HttpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
			}
		}

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("creating Vault client: %w", err)
		}

		if d.config.SecretsStorage.Namespace != "" {
			client.SetNamespace(d.config.SecretsStorage.Namespace)
		}

		d.repos.secretsRepo = repos.NewVaultRepository(client)

		return nil
	}
}

func WithConfigLoader(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if d.repos.secretsRepo == nil {
			return nil
		}

		version, err := config.NewLoader(d.config, d.repos.secretsRepo).Load(ctx)
		if err != nil {
			return fmt.Errorf("loading secrets from Vault: %w", err)
		}

		d.infra.logger.Info().
			Uint("secret_version", version).
			Msg("backend credentials loaded from Vault")

		return nil
	}
}

func WithMetrics() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Telemetry.Metrics.Enabled {
			d.infra.metricsClient = noop.NewMetricsClient()

			return nil
		}

		client, err := prometheus.NewMetricsClient(d.config.Telemetry.Metrics.Namespace)
		if err != nil {
			return fmt.Errorf("initializing metrics: %w", err)
		}

		d.infra.metricsClient = client
		d.addCleanup("metrics", client.Shutdown)

		return nil
	}
}

func WithTracing(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		telemetry := d.config.Telemetry

		exporterConfigured := telemetry.OTLPEndpoint != "" || telemetry.ExporterType == infrastructure.ExporterStdout
		if !telemetry.Traces.Enabled || !exporterConfigured {
			d.infra.tracerProvider = infrastructure.NewNoopTracerProvider()

			return nil
		}

		tp, shutdown, err := infrastructure.NewTracerProvider(ctx, telemetry, d.config.App.ServiceVersion)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}

		d.infra.tracerProvider = tp
		d.addCleanup("tracer", shutdown)

		return nil
	}
}

func WithListBackend(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		selection, err := backends.Select(ctx, d.config.Storage, d.config.Backoff, d.infra.logger, d.infra.metricsClient)
		if err != nil {
			return fmt.Errorf("selecting storage backend: %w", err)
		}

		for resource, fn := range selection.Cleanup {
			d.addCleanup(resource, fn)
		}

		d.repos.listBackend = selection.Backend

		if fileBackend, ok := selection.Backend.(*backends.FileBackend); ok {
			d.infra.logger.Warn().
				Str("path", fileBackend.Path()).
				Msg("data is stored on the local filesystem and may be lost on redeploy, mount a persistent volume or configure a remote backend")
		}

		return nil
	}
}

func WithListService() DependencyOption {
	return func(d *dependencies) error {
		d.listService = services.NewListService(d.repos.listBackend, d.infra.logger, d.infra.metricsClient)
		d.healthChecker = services.NewBackendHealthChecker(d.repos.listBackend, readinessTimeout)

		return nil
	}
}

func WithApplication() DependencyOption {
	return func(d *dependencies) error {
		d.app = usecases.NewApplication(
			d.listService,
			d.healthChecker,
			d.infra.logger,
			d.infra.tracerProvider,
			d.infra.metricsClient,
		)

		return nil
	}
}

func WithRateLimitStore() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.ThrottledRateLimiting.Enabled {
			return nil
		}

		store, err := memstore.NewCtx(int(d.config.ThrottledRateLimiting.MaxKeys))
		if err != nil {
			return fmt.Errorf("creating rate limit store: %w", err)
		}

		d.infra.rateLimitStore = store

		return nil
	}
}

func WithHTTPServer() DependencyOption {
	return func(d *dependencies) error {
		router, err := inboundhttp.NewRouter(inboundhttp.RouterConfig{
			App:            d.app,
			Logger:         d.infra.logger,
			MetricsClient:  d.infra.metricsClient,
			Config:         d.config,
			RateLimitStore: d.infra.rateLimitStore,
			BackendName:    d.listService.BackendName(),
		})
		if err != nil {
			return fmt.Errorf("building router: %w", err)
		}

		cfg := d.config.HTTPServer

		d.infra.httpServer = &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, strconv.FormatUint(uint64(cfg.Port), 10)),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		}

		return nil
	}
}
