package backends

import (
	"context"
	"errors"
	"fmt"

	"github.com/architeacher/device-list/pkg/circuitbreaker"
	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/pkg/metrics"
	"github.com/architeacher/device-list/services/svc-list/internal/config"
	"github.com/architeacher/device-list/services/svc-list/internal/infrastructure"
	infraPostgres "github.com/architeacher/device-list/services/svc-list/internal/infrastructure/postgres"
	"github.com/architeacher/device-list/services/svc-list/internal/ports"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrUnsupportedBackend = errors.New("unsupported storage backend")

// Selection is the backend chosen at startup together with the resources
// that must be released on shutdown.
type Selection struct {
	Backend ports.ListBackend

	// FellBack is set when an auto-selected remote backend was unreachable
	// and the file backend took its place.
	FellBack bool

	Cleanup map[string]func(ctx context.Context) error
}

// Select resolves the configured backend, connects to it and wraps remote
// backends with a circuit breaker. The choice is made once per process.
func Select(
	ctx context.Context,
	storage config.Storage,
	retry config.Backoff,
	log logger.Logger,
	metricsClient metrics.Client,
) (*Selection, error) {
	log = log.Component("backend-selector")

	name, auto := storage.ResolveBackend()

	selection := &Selection{Cleanup: make(map[string]func(ctx context.Context) error)}

	backend, err := connect(ctx, name, storage, retry, log, selection)
	if err != nil {
		if !auto || name == config.BackendFile {
			return nil, err
		}

		log.Warn().Err(err).
			Str("backend", name).
			Msg("auto-selected backend unavailable, falling back to file storage")

		backend, err = connect(ctx, config.BackendFile, storage, retry, log, selection)
		if err != nil {
			return nil, err
		}

		selection.FellBack = true
	}

	if isRemote(backend.Name()) {
		backend = WithCircuitBreaker(backend, breakerConfig(storage.CircuitBreaker), metricsClient, log)
	}

	selection.Backend = backend

	log.Info().
		Str("backend", backend.Name()).
		Bool("auto", auto).
		Bool("fell_back", selection.FellBack).
		Msg("storage backend selected")

	return selection, nil
}

func connect(
	ctx context.Context,
	name string,
	storage config.Storage,
	retry config.Backoff,
	log logger.Logger,
	selection *Selection,
) (ports.ListBackend, error) {
	switch name {
	case config.BackendFile:
		return NewFileBackend(storage.File.DataDir, storage.File.FileName, log)
	case config.BackendMemory:
		return NewMemoryBackend(nil), nil
	case config.BackendMongoDB:
		return connectMongo(ctx, storage.Mongo, retry, log, selection)
	case config.BackendPostgres:
		return connectPostgres(ctx, storage.Postgres, retry, log, selection)
	case config.BackendKeyDB:
		return connectKeyDB(ctx, storage.KeyDB, retry, log, selection)
	case config.BackendS3:
		return connectS3(ctx, storage.S3, retry, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, name)
	}
}

func connectMongo(
	ctx context.Context,
	cfg config.Mongo,
	retry config.Backoff,
	log logger.Logger,
	selection *Selection,
) (ports.ListBackend, error) {
	client, err := infrastructure.ConnectWithRetry(ctx, retry, log, config.BackendMongoDB,
		func(ctx context.Context) (*mongo.Client, error) {
			return infrastructure.NewMongoClient(ctx, cfg)
		})
	if err != nil {
		return nil, err
	}

	backend := NewMongoBackend(client.Database(cfg.Database).Collection(cfg.Collection), log)

	if err := backend.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))

		return nil, fmt.Errorf("ensuring mongodb indexes: %w", err)
	}

	selection.Cleanup[config.BackendMongoDB] = backend.Close

	return backend, nil
}

func connectPostgres(
	ctx context.Context,
	cfg config.Postgres,
	retry config.Backoff,
	log logger.Logger,
	selection *Selection,
) (ports.ListBackend, error) {
	pool, err := infrastructure.ConnectWithRetry(ctx, retry, log, config.BackendPostgres,
		func(ctx context.Context) (*pgxpool.Pool, error) {
			return infraPostgres.NewPool(ctx, cfg)
		})
	if err != nil {
		return nil, err
	}

	backend := NewPostgresBackend(pool, NewPgxScanner(), cfg.Table, log)

	if err := backend.EnsureSchema(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("ensuring postgres schema: %w", err)
	}

	selection.Cleanup[config.BackendPostgres] = func(context.Context) error {
		pool.Close()

		return nil
	}

	return backend, nil
}

func connectKeyDB(
	ctx context.Context,
	cfg config.KeyDB,
	retry config.Backoff,
	log logger.Logger,
	selection *Selection,
) (ports.ListBackend, error) {
	client, err := infrastructure.ConnectWithRetry(ctx, retry, log, config.BackendKeyDB,
		func(ctx context.Context) (*infrastructure.KeydbClient, error) {
			client := infrastructure.NewKeyDBClient(cfg, log)
			if err := client.Ping(ctx); err != nil {
				_ = client.Close()

				return nil, err
			}

			return client, nil
		})
	if err != nil {
		return nil, err
	}

	selection.Cleanup[config.BackendKeyDB] = func(context.Context) error {
		return client.Close()
	}

	return NewKeyDBBackend(client, cfg.Key, log), nil
}

func connectS3(
	ctx context.Context,
	cfg config.S3,
	retry config.Backoff,
	log logger.Logger,
) (ports.ListBackend, error) {
	client, err := infrastructure.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}

	backend := NewS3Backend(client, cfg.Bucket, cfg.Key, log)

	_, err = infrastructure.ConnectWithRetry(ctx, retry, log, config.BackendS3,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, backend.Ping(ctx)
		})
	if err != nil {
		return nil, err
	}

	return backend, nil
}

func isRemote(name string) bool {
	switch name {
	case config.BackendFile, config.BackendMemory:
		return false
	default:
		return true
	}
}

func breakerConfig(cfg config.CircuitBreaker) circuitbreaker.Config {
	return circuitbreaker.Config{
		Enabled:          cfg.Enabled,
		MaxRequests:      cfg.MaxRequests,
		Interval:         cfg.Interval,
		Timeout:          cfg.Timeout,
		FailureThreshold: cfg.FailureThreshold,
	}
}
