package ports

import (
	"context"

	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
)

// ListService validates list intents and applies them through a ListBackend.
type ListService interface {
	GetAll(ctx context.Context, statusFilter string) (model.Snapshot, error)
	GetActive(ctx context.Context) (model.Snapshot, error)
	Create(ctx context.Context, candidate any) (model.List, error)
	Update(ctx context.Context, index int, candidate any) (model.List, error)
	Delete(ctx context.Context, index int) (model.List, model.Record, error)
	Toggle(ctx context.Context, index int) (model.Record, error)
	ReplaceAll(ctx context.Context, candidates any) (model.List, error)
}
