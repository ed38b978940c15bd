// Package noop discards every observation. It backs the service when
// METRICS_ENABLED is off and keeps unit tests free of a registry.
package noop

import (
	"context"
	"net/http"

	"github.com/architeacher/device-list/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
)

var _ metrics.Client = MetricsClient{}

type MetricsClient struct{}

func NewMetricsClient() MetricsClient {
	return MetricsClient{}
}

func (MetricsClient) Inc(context.Context, string, any, ...attribute.KeyValue) {}

func (MetricsClient) Observe(context.Context, string, float64, ...attribute.KeyValue) {}

// Handler answers 404 so a mounted /metrics route behaves as if absent.
func (MetricsClient) Handler() http.Handler {
	return http.NotFoundHandler()
}

func (MetricsClient) Shutdown(context.Context) error {
	return nil
}
