// Package prometheus implements metrics.Client with OpenTelemetry instruments
// exported through a dedicated Prometheus registry. Instruments are created on
// first use; the attribute keys of an instrument are fixed by its first sample,
// since one Prometheus family cannot mix label sets.
package prometheus

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/architeacher/device-list/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/architeacher/device-list/pkg/metrics/prometheus"

type (
	MetricsClient struct {
		registry *prometheus.Registry
		provider *sdkmetric.MeterProvider
		meter    metric.Meter

		mu         sync.Mutex
		counters   map[string]metric.Int64Counter
		histograms map[string]metric.Float64Histogram
		labelKeys  map[string]string
	}
)

func NewMetricsClient(namespace string) (*MetricsClient, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithNamespace(namespace),
		otelprom.WithoutTargetInfo(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return &MetricsClient{
		registry:   registry,
		provider:   provider,
		meter:      provider.Meter(meterName),
		counters:   make(map[string]metric.Int64Counter),
		histograms: make(map[string]metric.Float64Histogram),
		labelKeys:  make(map[string]string),
	}, nil
}

func (c *MetricsClient) Inc(ctx context.Context, key string, value any, attributes ...attribute.KeyValue) {
	delta, ok := toInt64(value)
	if !ok || delta < 0 {
		return
	}

	counter, ok := c.counter(key, attributes)
	if !ok {
		return
	}

	counter.Add(ctx, delta, metric.WithAttributes(attributes...))
}

func (c *MetricsClient) Observe(ctx context.Context, key string, value float64, attributes ...attribute.KeyValue) {
	if math.IsNaN(value) || value < 0 {
		return
	}

	histogram, ok := c.histogram(key, attributes)
	if !ok {
		return
	}

	histogram.Record(ctx, value, metric.WithAttributes(attributes...))
}

func (c *MetricsClient) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *MetricsClient) Shutdown(ctx context.Context) error {
	return c.provider.Shutdown(ctx)
}

// Registry exposes the underlying registry for tests and additional collectors.
func (c *MetricsClient) Registry() *prometheus.Registry {
	return c.registry
}

func (c *MetricsClient) counter(name string, attributes []attribute.KeyValue) (metric.Int64Counter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.acceptsLabels(name, attributes) {
		return nil, false
	}

	if counter, ok := c.counters[name]; ok {
		return counter, true
	}

	counter, err := metrics.RegisterInt64Counter(c.meter, metrics.DescriptorFor(name), name)
	if err != nil {
		return nil, false
	}

	c.counters[name] = counter

	return counter, true
}

func (c *MetricsClient) histogram(name string, attributes []attribute.KeyValue) (metric.Float64Histogram, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.acceptsLabels(name, attributes) {
		return nil, false
	}

	if histogram, ok := c.histograms[name]; ok {
		return histogram, true
	}

	histogram, err := metrics.RegisterFloat64Histogram(c.meter, metrics.DescriptorFor(name), name)
	if err != nil {
		return nil, false
	}

	c.histograms[name] = histogram

	return histogram, true
}

// acceptsLabels pins the attribute keys of name on first use. Callers hold mu.
func (c *MetricsClient) acceptsLabels(name string, attributes []attribute.KeyValue) bool {
	keys := make([]string, 0, len(attributes))
	for _, attr := range attributes {
		keys = append(keys, string(attr.Key))
	}

	slices.Sort(keys)
	signature := strings.Join(keys, ",")

	pinned, ok := c.labelKeys[name]
	if !ok {
		c.labelKeys[name] = signature

		return true
	}

	return pinned == signature
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}

		return int64(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}

		return int64(v), true
	default:
		return 0, false
	}
}
