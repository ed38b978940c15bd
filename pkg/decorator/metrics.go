package decorator

import (
	"context"
	"time"

	"github.com/architeacher/device-list/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
)

type (
	commandMetricsDecorator[C Command, R any] struct {
		base   CommandHandler[C, R]
		client metrics.Client
	}

	queryMetricsDecorator[Q Query, R Result] struct {
		base   QueryHandler[Q, R]
		client metrics.Client
	}
)

func (d commandMetricsDecorator[C, R]) Handle(ctx context.Context, cmd C) (R, error) {
	start := time.Now()
	result, err := d.base.Handle(ctx, cmd)

	attributes := []attribute.KeyValue{
		attribute.String(metrics.AttrAction, generateActionName(cmd)),
		attribute.String(metrics.AttrOutcome, outcome(err)),
	}

	d.client.Inc(ctx, metrics.CommandsTotal, 1, attributes...)
	d.client.Observe(ctx, metrics.CommandDuration, time.Since(start).Seconds(), attributes...)

	return result, err
}

func (d queryMetricsDecorator[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	start := time.Now()
	result, err := d.base.Execute(ctx, query)

	attributes := []attribute.KeyValue{
		attribute.String(metrics.AttrAction, queryActionName(query)),
		attribute.String(metrics.AttrOutcome, queryOutcome(result, err)),
	}

	d.client.Inc(ctx, metrics.QueriesTotal, 1, attributes...)
	d.client.Observe(ctx, metrics.QueryDuration, time.Since(start).Seconds(), attributes...)

	return result, err
}

func outcome(err error) string {
	if err != nil {
		return metrics.OutcomeFailure
	}

	return metrics.OutcomeSuccess
}
