package metrics

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	CommandsTotal      = "commands_total"
	QueriesTotal       = "queries_total"
	BackendOpsTotal    = "backend_operations_total"
	DegradedReadsTotal = "degraded_reads_total"
	HTTPRequestsTotal  = "http_requests_total"

	CommandDuration     = "command_duration"
	QueryDuration       = "query_duration"
	HTTPRequestDuration = "http_request_duration"

	AttrAction  = "action"
	AttrOutcome = "outcome"
	AttrBackend = "backend"
	AttrMethod  = "method"
	AttrRoute   = "route"
	AttrStatus  = "status"

	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeDegraded = "degraded"
)

type (
	Client interface {
		Inc(ctx context.Context, key string, value any, attributes ...attribute.KeyValue)
		// Observe records one sample, in seconds for the duration keys.
		Observe(ctx context.Context, key string, value float64, attributes ...attribute.KeyValue)
		Handler() http.Handler
		Shutdown(ctx context.Context) error
	}

	// Descriptor defines metadata used when registering OTEL instruments.
	Descriptor struct {
		Description string
		Unit        string
	}
)

// Descriptors holds the metadata of every instrument the service records.
var Descriptors = map[string]Descriptor{
	CommandsTotal:       {Description: "Commands handled, by action and outcome."},
	QueriesTotal:        {Description: "Queries handled, by action and outcome."},
	BackendOpsTotal:     {Description: "Storage backend calls passing the circuit breaker, by outcome."},
	DegradedReadsTotal:  {Description: "Reads served as an empty list because the backend failed."},
	HTTPRequestsTotal:   {Description: "HTTP requests, by method, route pattern and status."},
	CommandDuration:     {Description: "Command handling latency.", Unit: "s"},
	QueryDuration:       {Description: "Query handling latency.", Unit: "s"},
	HTTPRequestDuration: {Description: "HTTP request latency.", Unit: "s"},
}

// DescriptorFor returns the registered descriptor for name, or a generic one.
func DescriptorFor(name string) Descriptor {
	if descriptor, ok := Descriptors[name]; ok {
		return descriptor
	}

	return Descriptor{Description: "Observations of " + name + "."}
}

// RegisterInt64Counter creates an Int64 counter using the provided descriptor.
func RegisterInt64Counter(m metric.Meter, descriptor Descriptor, name string) (metric.Int64Counter, error) {
	counter, err := m.Int64Counter(
		name,
		metric.WithDescription(descriptor.Description),
		metric.WithUnit(descriptor.Unit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", name, err)
	}

	return counter, nil
}

// RegisterFloat64Histogram creates a Float64 histogram using the provided descriptor.
func RegisterFloat64Histogram(m metric.Meter, descriptor Descriptor, name string) (metric.Float64Histogram, error) {
	histogram, err := m.Float64Histogram(
		name,
		metric.WithDescription(descriptor.Description),
		metric.WithUnit(descriptor.Unit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s histogram: %w", name, err)
	}

	return histogram, nil
}
