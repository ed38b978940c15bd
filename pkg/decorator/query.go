package decorator

import (
	"context"

	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Query  any
	Result any

	QueryHandler[Q Query, R Result] interface {
		Execute(ctx context.Context, query Q) (R, error)
	}

	// ActionNamer lets a query report a stable action name for logs, metrics
	// and spans instead of its Go type name.
	ActionNamer interface {
		ActionName() string
	}

	// DegradableResult is a read result that may stand in for data the
	// backend failed to return.
	DegradableResult interface {
		IsDegraded() bool
	}
)

// ApplyQueryDecorators wraps a read-side handler the same way as
// ApplyCommandDecorators. A degraded result succeeds for the caller but is
// logged at warn level, counted with the degraded outcome and tagged on the span.
func ApplyQueryDecorators[Q Query, R Result](
	handler QueryHandler[Q, R],
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) QueryHandler[Q, R] {
	return queryLoggingDecorator[Q, R]{
		base: queryMetricsDecorator[Q, R]{
			base: queryTracingDecorator[Q, R]{
				base:           handler,
				tracerProvider: tracerProvider,
			},
			client: metricsClient,
		},
		logger: log,
	}
}

func queryActionName(query any) string {
	if namer, ok := query.(ActionNamer); ok {
		if name := namer.ActionName(); name != "" {
			return name
		}
	}

	return generateActionName(query)
}

func isDegraded(result any) bool {
	degradable, ok := result.(DegradableResult)

	return ok && degradable.IsDegraded()
}

func queryOutcome(result any, err error) string {
	switch {
	case err != nil:
		return metrics.OutcomeFailure
	case isDegraded(result):
		return metrics.OutcomeDegraded
	default:
		return metrics.OutcomeSuccess
	}
}
