package queries_test

import (
	"context"
	"errors"
	"testing"

	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/pkg/metrics/noop"
	"github.com/architeacher/device-list/services/svc-list/internal/adapters/backends"
	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
	"github.com/architeacher/device-list/services/svc-list/internal/infrastructure"
	"github.com/architeacher/device-list/services/svc-list/internal/ports"
	"github.com/architeacher/device-list/services/svc-list/internal/services"
	"github.com/architeacher/device-list/services/svc-list/internal/usecases/queries"
	"github.com/stretchr/testify/require"
)

type stubHealthChecker struct {
	statuses map[string]ports.DependencyStatus
}

func (s stubHealthChecker) IsHealthy(context.Context) bool {
	for _, status := range s.statuses {
		if !status.Healthy {
			return false
		}
	}

	return true
}

func (s stubHealthChecker) CheckDependencies(context.Context) map[string]ports.DependencyStatus {
	return s.statuses
}

func TestListRecordsQueryHandler(t *testing.T) {
	t.Parallel()

	initial := model.List{
		{ID: "a", Name: "Router", Status: model.StatusActive},
		{ID: "b", Name: "Switch", Status: model.StatusInactive},
	}

	cases := []struct {
		name         string
		statusFilter string
		loadErr      error
		expected     model.List
		degraded     bool
		expectError  error
	}{
		{name: "all records", expected: initial},
		{name: "active filter", statusFilter: "active", expected: initial[:1]},
		{name: "unknown filter", statusFilter: "inactive", expectError: model.ErrInvalidInput},
		{name: "degraded read", loadErr: errors.New("unreachable"), expected: model.List{}, degraded: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			backend := backends.NewMemoryBackend(initial)
			backend.FailLoads(tc.loadErr)

			svc := services.NewListService(backend, logger.NewTestLogger(), noop.NewMetricsClient())
			handler := queries.NewListRecordsQueryHandler(svc, logger.NewTestLogger(), noop.NewMetricsClient(), infrastructure.NewNoopTracerProvider())

			snapshot, err := handler.Execute(context.Background(), queries.ListRecordsQuery{StatusFilter: tc.statusFilter})
			if tc.expectError != nil {
				require.ErrorIs(t, err, tc.expectError)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected, snapshot.List)
			require.Equal(t, tc.degraded, snapshot.Degraded)
		})
	}
}

func TestListActiveRecordsQueryHandler(t *testing.T) {
	t.Parallel()

	backend := backends.NewMemoryBackend(model.List{
		{ID: "a", Name: "Router", Status: model.StatusInactive},
		{ID: "b", Name: "Switch", Status: model.StatusActive},
	})
	svc := services.NewListService(backend, logger.NewTestLogger(), noop.NewMetricsClient())
	handler := queries.NewListActiveRecordsQueryHandler(svc, logger.NewTestLogger(), noop.NewMetricsClient(), infrastructure.NewNoopTracerProvider())

	snapshot, err := handler.Execute(context.Background(), queries.ListActiveRecordsQuery{})
	require.NoError(t, err)
	require.Equal(t, model.List{{ID: "b", Name: "Switch", Status: model.StatusActive}}, snapshot.List)
}

func TestFetchLivenessQueryHandler(t *testing.T) {
	t.Parallel()

	handler := queries.NewFetchLivenessQueryHandler(logger.NewTestLogger(), noop.NewMetricsClient(), infrastructure.NewNoopTracerProvider())

	result, err := handler.Execute(context.Background(), queries.FetchLivenessQuery{})
	require.NoError(t, err)
	require.Equal(t, "ok", result.Status)
}

func TestFetchReadinessQueryHandler(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name           string
		statuses       map[string]ports.DependencyStatus
		expectedReady  bool
		expectedStatus string
	}{
		{
			name:           "backend reachable",
			statuses:       map[string]ports.DependencyStatus{"postgres": {Healthy: true}},
			expectedReady:  true,
			expectedStatus: "ok",
		},
		{
			name:           "backend unreachable",
			statuses:       map[string]ports.DependencyStatus{"postgres": {Healthy: false, Message: "connection refused"}},
			expectedReady:  false,
			expectedStatus: "unavailable",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := queries.NewFetchReadinessQueryHandler(
				stubHealthChecker{statuses: tc.statuses},
				logger.NewTestLogger(),
				noop.NewMetricsClient(),
				infrastructure.NewNoopTracerProvider(),
			)

			result, err := handler.Execute(context.Background(), queries.FetchReadinessQuery{})
			require.NoError(t, err)
			require.Equal(t, tc.expectedReady, result.Ready)
			require.Equal(t, tc.expectedStatus, result.Status)
			require.Equal(t, tc.statuses, result.Dependencies)
			require.Equal(t, !tc.expectedReady, result.IsDegraded())
		})
	}
}

func TestQueryActionNames(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		query    interface{ ActionName() string }
		expected string
	}{
		{name: "all records", query: queries.ListRecordsQuery{}, expected: "get_all_records"},
		{name: "records by status", query: queries.ListRecordsQuery{StatusFilter: "active"}, expected: "get_records_by_status"},
		{name: "active records", query: queries.ListActiveRecordsQuery{}, expected: "get_active_records"},
		{name: "liveness", query: queries.FetchLivenessQuery{}, expected: "liveness"},
		{name: "readiness", query: queries.FetchReadinessQuery{}, expected: "readiness"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.expected, tc.query.ActionName())
		})
	}
}
