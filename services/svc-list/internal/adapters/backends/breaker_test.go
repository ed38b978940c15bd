package backends

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/architeacher/device-list/pkg/circuitbreaker"
	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/pkg/metrics/noop"
	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
	"github.com/architeacher/device-list/services/svc-list/internal/ports"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	*MemoryBackend

	insertErr error
	inserts   int
}

func (s *recordingStore) InsertRecord(_ context.Context, _ model.Record) error {
	s.inserts++

	return s.insertErr
}

func (s *recordingStore) UpdateRecord(context.Context, string, model.Record) error { return nil }

func (s *recordingStore) DeleteRecord(context.Context, string) error { return nil }

func testBreakerConfig() circuitbreaker.Config {
	return circuitbreaker.Config{
		Enabled:          true,
		MaxRequests:      1,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	}
}

func TestWithCircuitBreaker_OpensOnRepeatedFailures(t *testing.T) {
	t.Parallel()

	memory := NewMemoryBackend(model.List{model.NewRecord("d1", "A")})
	memory.FailLoads(errors.New("connection refused"))

	guarded := WithCircuitBreaker(memory, testBreakerConfig(), noop.NewMetricsClient(), logger.NewTestLogger())
	require.Equal(t, "memory", guarded.Name())

	for range 2 {
		_, err := guarded.Load(context.Background())
		require.ErrorContains(t, err, "connection refused")
	}

	memory.FailLoads(nil)

	_, err := guarded.Load(context.Background())
	require.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)

	err = guarded.Replace(context.Background(), model.List{})
	require.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	require.Zero(t, memory.Replaces())

	state, ok := guarded.(interface{ State() circuitbreaker.State })
	require.True(t, ok)
	require.Equal(t, circuitbreaker.StateOpen, state.State())
}

func TestWithCircuitBreaker_KeepsRecordStoreCapability(t *testing.T) {
	t.Parallel()

	plain := WithCircuitBreaker(NewMemoryBackend(nil), testBreakerConfig(), noop.NewMetricsClient(), logger.NewTestLogger())
	_, isStore := plain.(ports.RecordStore)
	require.False(t, isStore)

	store := &recordingStore{MemoryBackend: NewMemoryBackend(nil)}
	guarded := WithCircuitBreaker(store, testBreakerConfig(), noop.NewMetricsClient(), logger.NewTestLogger())

	recordStore, isStore := guarded.(ports.RecordStore)
	require.True(t, isStore)
	require.NoError(t, recordStore.InsertRecord(context.Background(), model.NewRecord("d1", "A")))
	require.Equal(t, 1, store.inserts)
}

func TestWithCircuitBreaker_DuplicatesDoNotTrip(t *testing.T) {
	t.Parallel()

	store := &recordingStore{
		MemoryBackend: NewMemoryBackend(nil),
		insertErr:     model.NewDuplicateIDError("d1"),
	}
	guarded := WithCircuitBreaker(store, testBreakerConfig(), noop.NewMetricsClient(), logger.NewTestLogger())
	recordStore := guarded.(ports.RecordStore)

	for range 5 {
		err := recordStore.InsertRecord(context.Background(), model.NewRecord("d1", "A"))
		require.ErrorIs(t, err, model.ErrDuplicateID)
	}

	require.Equal(t, 5, store.inserts)
	require.NoError(t, guarded.Ping(context.Background()))
}
