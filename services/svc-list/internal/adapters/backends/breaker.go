package backends

import (
	"context"

	"github.com/architeacher/device-list/pkg/circuitbreaker"
	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/pkg/metrics"
	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
	"github.com/architeacher/device-list/services/svc-list/internal/ports"
	"go.opentelemetry.io/otel/attribute"
)

type (
	breakerBackend struct {
		base          ports.ListBackend
		cb            *circuitbreaker.CircuitBreaker[model.List]
		metricsClient metrics.Client
	}

	// breakerRecordBackend keeps the RecordStore capability of the wrapped
	// backend visible to type assertions.
	breakerRecordBackend struct {
		*breakerBackend
		store ports.RecordStore
	}
)

// WithCircuitBreaker guards a remote backend so that repeated failures fail
// fast instead of waiting on timeouts. Duplicate ids reported by the store
// do not count as failures. Every call is counted by backend, action and outcome.
func WithCircuitBreaker(
	backend ports.ListBackend,
	cfg circuitbreaker.Config,
	metricsClient metrics.Client,
	log logger.Logger,
) ports.ListBackend {
	log = log.Component("circuit-breaker")

	if cfg.Name == "" {
		cfg.Name = backend.Name()
	}

	cfg.IgnoredErrors = append(cfg.IgnoredErrors, model.ErrDuplicateID)
	cfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		log.Warn().
			Str("backend", name).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("storage circuit breaker changed state")
	}

	guarded := &breakerBackend{
		base:          backend,
		cb:            circuitbreaker.New[model.List](cfg),
		metricsClient: metricsClient,
	}

	if store, ok := backend.(ports.RecordStore); ok {
		return &breakerRecordBackend{breakerBackend: guarded, store: store}
	}

	return guarded
}

func (b *breakerBackend) Name() string {
	return b.base.Name()
}

func (b *breakerBackend) Load(ctx context.Context) (model.List, error) {
	list, err := circuitbreaker.Execute(b.cb, func() (model.List, error) {
		return b.base.Load(ctx)
	})
	b.count(ctx, "load", err)

	return list, err
}

func (b *breakerBackend) Replace(ctx context.Context, list model.List) error {
	return b.run(ctx, "replace", func() error {
		return b.base.Replace(ctx, list)
	})
}

func (b *breakerBackend) Ping(ctx context.Context) error {
	return b.run(ctx, "ping", func() error {
		return b.base.Ping(ctx)
	})
}

func (b *breakerBackend) Close(ctx context.Context) error {
	if closer, ok := b.base.(ports.Closer); ok {
		return closer.Close(ctx)
	}

	return nil
}

// State exposes the breaker state for health reporting.
func (b *breakerBackend) State() circuitbreaker.State {
	return b.cb.State()
}

func (b *breakerBackend) run(ctx context.Context, action string, fn func() error) error {
	_, err := circuitbreaker.Execute(b.cb, func() (model.List, error) {
		return nil, fn()
	})
	b.count(ctx, action, err)

	return err
}

func (b *breakerBackend) count(ctx context.Context, action string, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}

	b.metricsClient.Inc(ctx, metrics.BackendOpsTotal, 1,
		attribute.String(metrics.AttrBackend, b.base.Name()),
		attribute.String(metrics.AttrAction, action),
		attribute.String(metrics.AttrOutcome, outcome),
	)
}

func (b *breakerRecordBackend) InsertRecord(ctx context.Context, record model.Record) error {
	return b.run(ctx, "insert", func() error {
		return b.store.InsertRecord(ctx, record)
	})
}

func (b *breakerRecordBackend) UpdateRecord(ctx context.Context, previousID string, record model.Record) error {
	return b.run(ctx, "update", func() error {
		return b.store.UpdateRecord(ctx, previousID, record)
	})
}

func (b *breakerRecordBackend) DeleteRecord(ctx context.Context, id string) error {
	return b.run(ctx, "delete", func() error {
		return b.store.DeleteRecord(ctx, id)
	})
}
