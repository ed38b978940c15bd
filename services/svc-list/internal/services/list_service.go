package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/pkg/metrics"
	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
	"github.com/architeacher/device-list/services/svc-list/internal/ports"
	"go.opentelemetry.io/otel/attribute"
)

const statusFilterActive = "active"

// ListService applies list intents to the configured backend. Mutations are
// serialized within the process; the backend remains the source of truth and
// nothing is cached between calls.
type ListService struct {
	backend       ports.ListBackend
	logger        logger.Logger
	metricsClient metrics.Client

	mu sync.Mutex
}

func NewListService(backend ports.ListBackend, log logger.Logger, metricsClient metrics.Client) *ListService {
	return &ListService{
		backend:       backend,
		logger:        log.Component("list-service"),
		metricsClient: metricsClient,
	}
}

func (s *ListService) BackendName() string {
	return s.backend.Name()
}

func (s *ListService) GetAll(ctx context.Context, statusFilter string) (model.Snapshot, error) {
	switch statusFilter {
	case "":
		return s.loadAll(ctx), nil
	case statusFilterActive:
		return s.GetActive(ctx)
	default:
		return model.Snapshot{}, model.NewInvalidInputError("status")
	}
}

func (s *ListService) GetActive(ctx context.Context) (model.Snapshot, error) {
	snapshot := s.loadAll(ctx)
	snapshot.List = snapshot.List.Active()

	return snapshot, nil
}

func (s *ListService) Create(ctx context.Context, candidate any) (model.List, error) {
	parsed, err := model.ParseCandidate(candidate)
	if err != nil {
		return nil, err
	}

	record := model.NewRecord(parsed.ID, parsed.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadForWrite(ctx)
	if err != nil {
		return nil, err
	}

	if current.IndexOf(record.ID) >= 0 {
		return nil, model.NewDuplicateIDError(record.ID)
	}

	next := append(current.Clone(), record)

	err = s.persist(ctx, next, func(store ports.RecordStore) error {
		return store.InsertRecord(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	return next, nil
}

// Update overwrites the record at index and keeps its status.
func (s *ListService) Update(ctx context.Context, index int, candidate any) (model.List, error) {
	parsed, err := model.ParseCandidate(candidate)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadForWrite(ctx)
	if err != nil {
		return nil, err
	}

	if err := current.CheckIndex(index); err != nil {
		return nil, err
	}

	if existing := current.IndexOf(parsed.ID); existing >= 0 && existing != index {
		return nil, model.NewDuplicateIDError(parsed.ID)
	}

	previous := current[index]
	updated := model.Record{ID: parsed.ID, Name: parsed.Name, Status: previous.Status}

	next := current.Clone()
	next[index] = updated

	err = s.persist(ctx, next, func(store ports.RecordStore) error {
		return store.UpdateRecord(ctx, previous.ID, updated)
	})
	if err != nil {
		return nil, err
	}

	return next, nil
}

func (s *ListService) Delete(ctx context.Context, index int) (model.List, model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadForWrite(ctx)
	if err != nil {
		return nil, model.Record{}, err
	}

	if err := current.CheckIndex(index); err != nil {
		return nil, model.Record{}, err
	}

	removed := current[index]
	next := slices.Delete(current.Clone(), index, index+1)

	err = s.persist(ctx, next, func(store ports.RecordStore) error {
		return store.DeleteRecord(ctx, removed.ID)
	})
	if err != nil {
		return nil, model.Record{}, err
	}

	return next, removed, nil
}

func (s *ListService) Toggle(ctx context.Context, index int) (model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.loadForWrite(ctx)
	if err != nil {
		return model.Record{}, err
	}

	if err := current.CheckIndex(index); err != nil {
		return model.Record{}, err
	}

	toggled := current[index]
	toggled.Status = toggled.Status.Toggle()

	next := current.Clone()
	next[index] = toggled

	err = s.persist(ctx, next, func(store ports.RecordStore) error {
		return store.UpdateRecord(ctx, toggled.ID, toggled)
	})
	if err != nil {
		return model.Record{}, err
	}

	return toggled, nil
}

// ReplaceAll validates every candidate and rejects repeated ids before
// overwriting the list. It does not depend on the current state.
func (s *ListService) ReplaceAll(ctx context.Context, candidates any) (model.List, error) {
	list, err := model.ParseCandidates(candidates)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Replace(ctx, list); err != nil {
		return nil, s.persistError(ctx, "replace", err)
	}

	return list, nil
}

func (s *ListService) loadAll(ctx context.Context) model.Snapshot {
	list, err := s.backend.Load(ctx)
	if err != nil {
		log := s.logger.WithContext(ctx)
		log.Error().Err(err).Str("backend", s.backend.Name()).Msg("failed to load list, serving empty list")

		s.metricsClient.Inc(ctx, metrics.DegradedReadsTotal, 1, attribute.String(metrics.AttrBackend, s.backend.Name()))

		return model.Snapshot{List: model.List{}, Degraded: true, Cause: err}
	}

	return model.Snapshot{List: list.Normalize()}
}

// loadForWrite refuses to compute a mutation on top of a degraded read, which
// would otherwise overwrite stored records with a list built from nothing.
func (s *ListService) loadForWrite(ctx context.Context) (model.List, error) {
	snapshot := s.loadAll(ctx)
	if snapshot.Degraded {
		return nil, fmt.Errorf("%w: %w", model.ErrStorageDegraded, snapshot.Cause)
	}

	return snapshot.List, nil
}

func (s *ListService) persist(ctx context.Context, next model.List, incremental func(ports.RecordStore) error) error {
	if store, ok := s.backend.(ports.RecordStore); ok {
		if err := incremental(store); err != nil {
			return s.persistError(ctx, "incremental write", err)
		}

		return nil
	}

	if err := s.backend.Replace(ctx, next); err != nil {
		return s.persistError(ctx, "replace", err)
	}

	return nil
}

func (s *ListService) persistError(ctx context.Context, operation string, err error) error {
	log := s.logger.WithContext(ctx)

	// A uniqueness constraint enforced by the store is still a client error.
	var duplicate *model.DuplicateIDError
	if errors.As(err, &duplicate) {
		log.Warn().Err(err).Str("backend", s.backend.Name()).Msg("store rejected duplicate id")

		return duplicate
	}

	log.Error().Err(err).
		Str("backend", s.backend.Name()).
		Str("operation", operation).
		Msg("failed to persist list")

	return fmt.Errorf("%w: %w", model.ErrPersistFailed, err)
}
