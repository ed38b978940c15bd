package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/architeacher/device-list/services/svc-list/internal/adapters/backends"
	"github.com/architeacher/device-list/services/svc-list/internal/services"
	"github.com/stretchr/testify/require"
)

func TestBackendHealthChecker(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name            string
		pingErr         error
		expectedHealthy bool
		expectedMessage string
	}{
		{name: "healthy backend", expectedHealthy: true},
		{name: "unreachable backend", pingErr: errors.New("connection refused"), expectedMessage: "connection refused"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			backend := backends.NewMemoryBackend(nil)
			backend.FailLoads(tc.pingErr)

			checker := services.NewBackendHealthChecker(backend, time.Second)

			require.Equal(t, tc.expectedHealthy, checker.IsHealthy(context.Background()))

			statuses := checker.CheckDependencies(context.Background())
			require.Contains(t, statuses, "memory")
			require.Equal(t, tc.expectedHealthy, statuses["memory"].Healthy)
			require.Equal(t, tc.expectedMessage, statuses["memory"].Message)
			require.NotEmpty(t, statuses["memory"].Latency)
		})
	}
}
