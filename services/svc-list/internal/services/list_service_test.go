package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/pkg/metrics/noop"
	"github.com/architeacher/device-list/services/svc-list/internal/adapters/backends"
	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
	"github.com/architeacher/device-list/services/svc-list/internal/services"
	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("connection refused")

func newService(initial model.List) (*services.ListService, *backends.MemoryBackend) {
	backend := backends.NewMemoryBackend(initial)

	return services.NewListService(backend, logger.NewTestLogger(), noop.NewMetricsClient()), backend
}

func device(id, name string) map[string]any {
	return map[string]any{"id": id, "name": name}
}

func stored(t *testing.T, backend *backends.MemoryBackend) model.List {
	t.Helper()

	list, err := backend.Load(context.Background())
	require.NoError(t, err)

	return list
}

func TestListService_CreateOnEmptyList(t *testing.T) {
	t.Parallel()

	svc, backend := newService(nil)

	list, err := svc.Create(context.Background(), device("d1", "Device 1"))
	require.NoError(t, err)

	expected := model.List{{ID: "d1", Name: "Device 1", Status: model.StatusActive}}
	require.Equal(t, expected, list)
	require.Equal(t, expected, stored(t, backend))
}

func TestListService_CreateDuplicateLeavesListUnchanged(t *testing.T) {
	t.Parallel()

	initial := model.List{model.NewRecord("d1", "Device 1")}
	svc, backend := newService(initial)

	_, err := svc.Create(context.Background(), device("d1", "Dup"))

	var duplicate *model.DuplicateIDError
	require.ErrorAs(t, err, &duplicate)
	require.Equal(t, "d1", duplicate.ID)
	require.Equal(t, initial, stored(t, backend))
	require.Zero(t, backend.Replaces())
}

func TestListService_DeleteOutOfRange(t *testing.T) {
	t.Parallel()

	svc, backend := newService(model.List{model.NewRecord("d1", "A"), model.NewRecord("d2", "B")})

	_, _, err := svc.Delete(context.Background(), 5)

	var outOfRange *model.IndexOutOfRangeError
	require.ErrorAs(t, err, &outOfRange)
	require.Equal(t, 2, outOfRange.Length)
	require.Contains(t, err.Error(), "2")
	require.Zero(t, backend.Replaces())
}

func TestListService_NegativeIndexIsOutOfRange(t *testing.T) {
	t.Parallel()

	svc, backend := newService(model.List{model.NewRecord("d1", "A"), model.NewRecord("d2", "B")})
	ctx := context.Background()

	_, _, err := svc.Delete(ctx, -1)
	require.ErrorIs(t, err, model.ErrIndexOutOfRange)
	require.EqualError(t, err, "index -1 out of range, list length is 2")

	_, err = svc.Toggle(ctx, -1)
	require.ErrorIs(t, err, model.ErrIndexOutOfRange)

	_, err = svc.Update(ctx, -1, map[string]any{"id": "d3", "name": "C"})
	require.ErrorIs(t, err, model.ErrIndexOutOfRange)

	require.Zero(t, backend.Replaces())
}

func TestListService_ToggleIsAnInvolution(t *testing.T) {
	t.Parallel()

	svc, backend := newService(model.List{model.NewRecord("d1", "A")})
	ctx := context.Background()

	record, err := svc.Toggle(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, model.StatusInactive, record.Status)
	require.Equal(t, model.StatusInactive, stored(t, backend)[0].Status)

	record, err = svc.Toggle(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, record.Status)
	require.Equal(t, model.StatusActive, stored(t, backend)[0].Status)
}

func TestListService_UpdateRejectsCollisionWithOtherIndex(t *testing.T) {
	t.Parallel()

	initial := model.List{model.NewRecord("d1", "A"), model.NewRecord("d2", "B")}
	svc, backend := newService(initial)

	_, err := svc.Update(context.Background(), 1, device("d1", "X"))
	require.ErrorIs(t, err, model.ErrDuplicateID)
	require.Equal(t, initial, stored(t, backend))
}

func TestListService_UpdateKeepsStatusAndAllowsSameID(t *testing.T) {
	t.Parallel()

	initial := model.List{
		model.NewRecord("d1", "A"),
		{ID: "d2", Name: "B", Status: model.StatusInactive},
	}
	svc, _ := newService(initial)

	list, err := svc.Update(context.Background(), 1, map[string]any{"id": "d2", "name": "Renamed", "status": "active"})
	require.NoError(t, err)
	require.Equal(t, model.Record{ID: "d2", Name: "Renamed", Status: model.StatusInactive}, list[1])
	require.Equal(t, initial[0], list[0])
}

func TestListService_DeleteShiftsIndices(t *testing.T) {
	t.Parallel()

	initial := model.List{model.NewRecord("d1", "A"), model.NewRecord("d2", "B"), model.NewRecord("d3", "C")}
	svc, backend := newService(initial)

	list, removed, err := svc.Delete(context.Background(), 1)
	require.NoError(t, err)

	require.Equal(t, initial[1], removed)
	require.Equal(t, model.List{initial[0], initial[2]}, list)
	require.Equal(t, list, stored(t, backend))
}

func TestListService_CreateIgnoresCallerStatus(t *testing.T) {
	t.Parallel()

	svc, _ := newService(nil)

	list, err := svc.Create(context.Background(), map[string]any{"id": "d1", "name": "A", "status": "inactive"})
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, list[0].Status)
}

func TestListService_ValidationPrecedesStorage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		call func(*services.ListService) error
	}{
		{
			name: "create without id",
			call: func(s *services.ListService) error {
				_, err := s.Create(context.Background(), map[string]any{"name": "A"})

				return err
			},
		},
		{
			name: "update with empty name",
			call: func(s *services.ListService) error {
				_, err := s.Update(context.Background(), 0, map[string]any{"id": "d1", "name": ""})

				return err
			},
		},
		{
			name: "replace with non array",
			call: func(s *services.ListService) error {
				_, err := s.ReplaceAll(context.Background(), "not a list")

				return err
			},
		},
		{
			name: "unknown status filter",
			call: func(s *services.ListService) error {
				_, err := s.GetAll(context.Background(), "inactive")

				return err
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, backend := newService(nil)
			backend.FailLoads(errUnavailable)
			backend.FailReplaces(errUnavailable)

			err := tc.call(svc)
			require.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}

func TestListService_GetAll(t *testing.T) {
	t.Parallel()

	initial := model.List{
		model.NewRecord("d1", "A"),
		{ID: "d2", Name: "B", Status: model.StatusInactive},
		{ID: "d3", Name: "C"},
	}

	cases := []struct {
		name     string
		filter   string
		expected []string
	}{
		{name: "no filter", filter: "", expected: []string{"d1", "d2", "d3"}},
		{name: "active filter", filter: "active", expected: []string{"d1", "d3"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc, _ := newService(initial)

			snapshot, err := svc.GetAll(context.Background(), tc.filter)
			require.NoError(t, err)
			require.False(t, snapshot.Degraded)

			ids := make([]string, 0, len(snapshot.List))
			for _, record := range snapshot.List {
				require.True(t, record.Status.IsValid())
				ids = append(ids, record.ID)
			}

			require.Equal(t, tc.expected, ids)
		})
	}
}

func TestListService_DegradedReads(t *testing.T) {
	t.Parallel()

	svc, backend := newService(model.List{model.NewRecord("d1", "A")})
	backend.FailLoads(errUnavailable)

	snapshot, err := svc.GetAll(context.Background(), "")
	require.NoError(t, err)
	require.True(t, snapshot.Degraded)
	require.Empty(t, snapshot.List)
	require.NotNil(t, snapshot.List)
	require.ErrorIs(t, snapshot.Cause, errUnavailable)

	active, err := svc.GetActive(context.Background())
	require.NoError(t, err)
	require.True(t, active.Degraded)
}

func TestListService_MutationsRefuseDegradedState(t *testing.T) {
	t.Parallel()

	svc, backend := newService(model.List{model.NewRecord("d1", "A")})
	backend.FailLoads(errUnavailable)

	_, err := svc.Create(context.Background(), device("d2", "B"))
	require.ErrorIs(t, err, model.ErrStorageDegraded)
	require.ErrorIs(t, err, errUnavailable)

	_, err = svc.Toggle(context.Background(), 0)
	require.ErrorIs(t, err, model.ErrStorageDegraded)

	_, _, err = svc.Delete(context.Background(), 0)
	require.ErrorIs(t, err, model.ErrStorageDegraded)

	require.Zero(t, backend.Replaces())
}

func TestListService_PersistFailure(t *testing.T) {
	t.Parallel()

	svc, backend := newService(nil)
	backend.FailReplaces(errUnavailable)

	_, err := svc.Create(context.Background(), device("d1", "A"))
	require.ErrorIs(t, err, model.ErrPersistFailed)
	require.ErrorIs(t, err, errUnavailable)

	_, err = svc.ReplaceAll(context.Background(), []any{device("d1", "A")})
	require.ErrorIs(t, err, model.ErrPersistFailed)
}

func TestListService_ReplaceAll(t *testing.T) {
	t.Parallel()

	svc, backend := newService(model.List{model.NewRecord("old", "Old")})

	list, err := svc.ReplaceAll(context.Background(), []any{
		device("d1", "A"),
		map[string]any{"id": "d2", "name": "B", "status": "inactive"},
	})
	require.NoError(t, err)

	expected := model.List{
		{ID: "d1", Name: "A", Status: model.StatusActive},
		{ID: "d2", Name: "B", Status: model.StatusInactive},
	}
	require.Equal(t, expected, list)
	require.Equal(t, expected, stored(t, backend))

	_, err = svc.ReplaceAll(context.Background(), []any{device("d1", "A"), device("d1", "B")})
	require.ErrorIs(t, err, model.ErrDuplicateID)
	require.Equal(t, expected, stored(t, backend))
}

func TestListService_RoundTrip(t *testing.T) {
	t.Parallel()

	initial := model.List{model.NewRecord("d1", "A"), {ID: "d2", Name: "B", Status: model.StatusInactive}}
	svc, backend := newService(initial)

	snapshot, err := svc.GetAll(context.Background(), "")
	require.NoError(t, err)

	_, err = svc.ReplaceAll(context.Background(), snapshot.List)
	require.NoError(t, err)
	require.Equal(t, initial, stored(t, backend))
}

func TestListService_ConcurrentCreatesKeepIDsUnique(t *testing.T) {
	t.Parallel()

	svc, backend := newService(nil)

	const writers = 20

	var wg sync.WaitGroup

	errs := make(chan error, writers*2)

	for i := range writers {
		wg.Add(2)

		go func() {
			defer wg.Done()

			_, err := svc.Create(context.Background(), device(fmt.Sprintf("d%d", i), "unique"))
			errs <- err
		}()

		go func() {
			defer wg.Done()

			_, err := svc.Create(context.Background(), device("shared", "contended"))
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	duplicates := 0

	for err := range errs {
		if err != nil {
			require.ErrorIs(t, err, model.ErrDuplicateID)

			duplicates++
		}
	}

	list := stored(t, backend)
	require.Len(t, list, writers+1)
	require.Equal(t, writers-1, duplicates)
	require.NoError(t, list.CheckUnique())
}

type incrementalBackend struct {
	*backends.MemoryBackend

	inserts, updates, deletes int
	insertErr                 error
}

func (b *incrementalBackend) InsertRecord(ctx context.Context, record model.Record) error {
	if b.insertErr != nil {
		return b.insertErr
	}

	b.inserts++

	list, _ := b.Load(ctx)

	return b.Replace(ctx, append(list, record))
}

func (b *incrementalBackend) UpdateRecord(ctx context.Context, previousID string, record model.Record) error {
	b.updates++

	list, _ := b.Load(ctx)
	list[list.IndexOf(previousID)] = record

	return b.Replace(ctx, list)
}

func (b *incrementalBackend) DeleteRecord(ctx context.Context, id string) error {
	b.deletes++

	list, _ := b.Load(ctx)
	index := list.IndexOf(id)

	return b.Replace(ctx, append(list[:index], list[index+1:]...))
}

func TestListService_UsesIncrementalWrites(t *testing.T) {
	t.Parallel()

	backend := &incrementalBackend{MemoryBackend: backends.NewMemoryBackend(nil)}
	svc := services.NewListService(backend, logger.NewTestLogger(), noop.NewMetricsClient())
	ctx := context.Background()

	_, err := svc.Create(ctx, device("d1", "A"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, device("d2", "B"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, 0, device("d1", "A2"))
	require.NoError(t, err)

	_, err = svc.Toggle(ctx, 1)
	require.NoError(t, err)

	list, _, err := svc.Delete(ctx, 0)
	require.NoError(t, err)

	require.Equal(t, 2, backend.inserts)
	require.Equal(t, 2, backend.updates)
	require.Equal(t, 1, backend.deletes)
	require.Equal(t, model.List{{ID: "d2", Name: "B", Status: model.StatusInactive}}, list)
	require.Equal(t, list, stored(t, backend.MemoryBackend))
}

func TestListService_StoreDuplicateIsClientError(t *testing.T) {
	t.Parallel()

	backend := &incrementalBackend{
		MemoryBackend: backends.NewMemoryBackend(nil),
		insertErr:     fmt.Errorf("mongodb insert: %w", model.NewDuplicateIDError("d1")),
	}
	svc := services.NewListService(backend, logger.NewTestLogger(), noop.NewMetricsClient())

	_, err := svc.Create(context.Background(), device("d1", "A"))
	require.ErrorIs(t, err, model.ErrDuplicateID)
	require.NotErrorIs(t, err, model.ErrPersistFailed)
}
