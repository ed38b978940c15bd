package decorator_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/architeacher/device-list/pkg/decorator"
	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/pkg/metrics"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type (
	RenameDevice struct {
		Index int
		Name  string
	}

	CountDevices struct{}

	LookupInventory struct {
		name string
	}

	inventory struct {
		degraded bool
	}

	inventoryHandler struct {
		result inventory
	}

	renameHandler struct {
		err error
	}

	countHandler struct {
		count int
	}

	recordedInc struct {
		key        string
		attributes map[string]string
	}

	recordingMetrics struct {
		mu       sync.Mutex
		calls    []recordedInc
		observed []recordedInc
	}
)

func (h renameHandler) Handle(_ context.Context, cmd RenameDevice) (string, error) {
	if h.err != nil {
		return "", h.err
	}

	return cmd.Name, nil
}

func (h countHandler) Execute(_ context.Context, _ CountDevices) (int, error) {
	return h.count, nil
}

func (q LookupInventory) ActionName() string { return q.name }

func (r inventory) IsDegraded() bool { return r.degraded }

func (h inventoryHandler) Execute(_ context.Context, _ LookupInventory) (inventory, error) {
	return h.result, nil
}

func (m *recordingMetrics) Inc(_ context.Context, key string, _ any, attributes ...attribute.KeyValue) {
	m.mu.Lock()
	defer m.mu.Unlock()

	attrs := make(map[string]string, len(attributes))
	for _, attr := range attributes {
		attrs[string(attr.Key)] = attr.Value.Emit()
	}

	m.calls = append(m.calls, recordedInc{key: key, attributes: attrs})
}

func (m *recordingMetrics) Observe(_ context.Context, key string, _ float64, attributes ...attribute.KeyValue) {
	m.mu.Lock()
	defer m.mu.Unlock()

	attrs := make(map[string]string, len(attributes))
	for _, attr := range attributes {
		attrs[string(attr.Key)] = attr.Value.Emit()
	}

	m.observed = append(m.observed, recordedInc{key: key, attributes: attrs})
}

func (m *recordingMetrics) Handler() http.Handler { return http.NotFoundHandler() }

func (m *recordingMetrics) Shutdown(context.Context) error { return nil }

func TestApplyCommandDecorators(t *testing.T) {
	t.Parallel()

	errRejected := errors.New("rejected")

	cases := []struct {
		name            string
		handler         renameHandler
		expectedResult  string
		expectedErr     error
		expectedOutcome string
		expectedStatus  codes.Code
		expectedLog     string
	}{
		{
			name:            "successful command",
			handler:         renameHandler{},
			expectedResult:  "router-1",
			expectedOutcome: metrics.OutcomeSuccess,
			expectedStatus:  codes.Ok,
			expectedLog:     "command executed",
		},
		{
			name:            "failing command",
			handler:         renameHandler{err: errRejected},
			expectedErr:     errRejected,
			expectedOutcome: metrics.OutcomeFailure,
			expectedStatus:  codes.Error,
			expectedLog:     "command failed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			recorder := tracetest.NewSpanRecorder()
			provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
			metricsClient := &recordingMetrics{}

			handler := decorator.ApplyCommandDecorators[RenameDevice, string](
				tc.handler,
				logger.NewBufferedTestLogger(&buf),
				metricsClient,
				provider,
			)

			result, err := handler.Handle(context.Background(), RenameDevice{Index: 0, Name: "router-1"})

			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
			}

			require.Equal(t, tc.expectedResult, result)

			require.Len(t, metricsClient.calls, 1)
			require.Equal(t, metrics.CommandsTotal, metricsClient.calls[0].key)
			require.Equal(t, "RenameDevice", metricsClient.calls[0].attributes[metrics.AttrAction])
			require.Equal(t, tc.expectedOutcome, metricsClient.calls[0].attributes[metrics.AttrOutcome])
			require.Len(t, metricsClient.observed, 1)
			require.Equal(t, metrics.CommandDuration, metricsClient.observed[0].key)
			require.Equal(t, tc.expectedOutcome, metricsClient.observed[0].attributes[metrics.AttrOutcome])

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			require.Equal(t, "command.RenameDevice", spans[0].Name())
			require.Equal(t, tc.expectedStatus, spans[0].Status().Code)

			require.Contains(t, buf.String(), tc.expectedLog)
		})
	}
}

func TestApplyQueryDecorators(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	metricsClient := &recordingMetrics{}

	handler := decorator.ApplyQueryDecorators[CountDevices, int](
		countHandler{count: 3},
		logger.NewBufferedTestLogger(&buf),
		metricsClient,
		provider,
	)

	result, err := handler.Execute(context.Background(), CountDevices{})
	require.NoError(t, err)
	require.Equal(t, 3, result)

	require.Len(t, metricsClient.calls, 1)
	require.Equal(t, metrics.QueriesTotal, metricsClient.calls[0].key)
	require.Equal(t, "CountDevices", metricsClient.calls[0].attributes[metrics.AttrAction])
	require.Len(t, metricsClient.observed, 1)
	require.Equal(t, metrics.QueryDuration, metricsClient.observed[0].key)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "query.CountDevices", spans[0].Name())
	require.Contains(t, buf.String(), "query executed")
}

func TestApplyQueryDecorators_NamedAndDegradedResults(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name             string
		query            LookupInventory
		result           inventory
		expectedAction   string
		expectedOutcome  string
		expectedDegraded bool
		expectedLog      string
	}{
		{
			name:            "named query with a complete result",
			query:           LookupInventory{name: "get_all_records"},
			expectedAction:  "get_all_records",
			expectedOutcome: metrics.OutcomeSuccess,
			expectedLog:     "query executed",
		},
		{
			name:             "named query with a degraded result",
			query:            LookupInventory{name: "get_active_records"},
			result:           inventory{degraded: true},
			expectedAction:   "get_active_records",
			expectedOutcome:  metrics.OutcomeDegraded,
			expectedDegraded: true,
			expectedLog:      "query served a degraded result",
		},
		{
			name:            "empty action name falls back to the type name",
			query:           LookupInventory{},
			expectedAction:  "LookupInventory",
			expectedOutcome: metrics.OutcomeSuccess,
			expectedLog:     "query executed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			recorder := tracetest.NewSpanRecorder()
			provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
			metricsClient := &recordingMetrics{}

			handler := decorator.ApplyQueryDecorators[LookupInventory, inventory](
				inventoryHandler{result: tc.result},
				logger.NewBufferedTestLogger(&buf),
				metricsClient,
				provider,
			)

			result, err := handler.Execute(context.Background(), tc.query)
			require.NoError(t, err)
			require.Equal(t, tc.result, result)

			require.Len(t, metricsClient.calls, 1)
			require.Equal(t, tc.expectedAction, metricsClient.calls[0].attributes[metrics.AttrAction])
			require.Equal(t, tc.expectedOutcome, metricsClient.calls[0].attributes[metrics.AttrOutcome])
			require.Len(t, metricsClient.observed, 1)
			require.Equal(t, tc.expectedOutcome, metricsClient.observed[0].attributes[metrics.AttrOutcome])

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			require.Equal(t, "query."+tc.expectedAction, spans[0].Name())
			require.Equal(t, codes.Ok, spans[0].Status().Code)

			degraded := false
			for _, attr := range spans[0].Attributes() {
				if attr.Key == "result.degraded" {
					degraded = attr.Value.AsBool()
				}
			}
			require.Equal(t, tc.expectedDegraded, degraded)

			require.Contains(t, buf.String(), tc.expectedLog)
		})
	}
}
