package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/architeacher/device-list/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
)

// Metrics counts and times requests by method, route pattern and status code.
// The route pattern keeps list indexes out of the label values.
func Metrics(metricsClient metrics.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := NewStatusRecorder(w)

			next.ServeHTTP(wrapped, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			attributes := []attribute.KeyValue{
				attribute.String(metrics.AttrMethod, r.Method),
				attribute.String(metrics.AttrRoute, route),
				attribute.String(metrics.AttrStatus, strconv.Itoa(wrapped.StatusCode())),
			}

			metricsClient.Inc(r.Context(), metrics.HTTPRequestsTotal, 1, attributes...)
			metricsClient.Observe(r.Context(), metrics.HTTPRequestDuration, time.Since(start).Seconds(), attributes...)
		})
	}
}
