package prometheus_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/architeacher/device-list/pkg/metrics"
	promclient "github.com/architeacher/device-list/pkg/metrics/prometheus"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func newClient(t *testing.T) *promclient.MetricsClient {
	t.Helper()

	client, err := promclient.NewMetricsClient("svc_list")
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Shutdown(context.Background()) })

	return client
}

// counterValue sums the samples of family whose labels include every entry of labels.
func counterValue(t *testing.T, client *promclient.MetricsClient, family string, labels map[string]string) (float64, bool) {
	t.Helper()

	families, err := client.Registry().Gather()
	require.NoError(t, err)

	var (
		total float64
		found bool
	)

	for _, mf := range families {
		if mf.GetName() != family {
			continue
		}

		for _, m := range mf.GetMetric() {
			matched := 0

			for _, pair := range m.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want == pair.GetValue() {
					matched++
				}
			}

			if matched == len(labels) {
				total += m.GetCounter().GetValue()
				found = true
			}
		}
	}

	return total, found
}

func TestMetricsClient_Inc(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	ctx := context.Background()

	attrs := []attribute.KeyValue{
		attribute.String(metrics.AttrAction, "CreateRecordCommand"),
		attribute.String(metrics.AttrOutcome, metrics.OutcomeSuccess),
	}

	cases := []struct {
		name  string
		value any
	}{
		{name: "int", value: 1},
		{name: "int64", value: int64(2)},
		{name: "whole float", value: 1.0},
		{name: "fractional float is dropped", value: 0.5},
		{name: "negative is dropped", value: -4},
		{name: "string is dropped", value: "not-a-number"},
	}

	for _, tc := range cases {
		client.Inc(ctx, metrics.CommandsTotal, tc.value, attrs...)
	}

	value, found := counterValue(t, client, "svc_list_commands_total", map[string]string{
		metrics.AttrAction:  "CreateRecordCommand",
		metrics.AttrOutcome: metrics.OutcomeSuccess,
	})
	require.True(t, found)
	require.InDelta(t, 4, value, 0)
}

func TestMetricsClient_PinsLabelKeysOnFirstUse(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	ctx := context.Background()

	client.Inc(ctx, metrics.QueriesTotal, 1, attribute.String(metrics.AttrAction, "ListRecordsQuery"))
	client.Inc(ctx, metrics.QueriesTotal, 1, attribute.String(metrics.AttrBackend, "file"))

	_, found := counterValue(t, client, "svc_list_queries_total", map[string]string{metrics.AttrBackend: "file"})
	require.False(t, found)

	value, found := counterValue(t, client, "svc_list_queries_total", map[string]string{metrics.AttrAction: "ListRecordsQuery"})
	require.True(t, found)
	require.InDelta(t, 1, value, 0)
}

func TestMetricsClient_Handler(t *testing.T) {
	t.Parallel()

	client := newClient(t)
	ctx := context.Background()

	client.Inc(ctx, metrics.DegradedReadsTotal, 1, attribute.String(metrics.AttrBackend, "file"))
	client.Observe(ctx, metrics.CommandDuration, 0.25, attribute.String(metrics.AttrAction, "ToggleRecordCommand"))
	client.Observe(ctx, metrics.CommandDuration, -1, attribute.String(metrics.AttrAction, "ToggleRecordCommand"))

	rec := httptest.NewRecorder()
	client.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	raw, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	body := string(raw)
	require.Contains(t, body, "svc_list_degraded_reads_total{")
	require.Contains(t, body, `backend="file"`)
	require.Contains(t, body, "# HELP svc_list_degraded_reads_total Reads served as an empty list because the backend failed.")
	require.Contains(t, body, "svc_list_command_duration_seconds_count{")
	require.Contains(t, body, "go_goroutines")

	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "svc_list_command_duration_seconds_count{") {
			require.True(t, strings.HasSuffix(line, " 1"), line)
		}
	}
}
