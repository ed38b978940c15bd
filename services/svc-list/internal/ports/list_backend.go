package ports

import (
	"context"

	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
)

type (
	// ListBackend owns the durable representation of the list.
	ListBackend interface {
		// Name identifies the backend in logs, metrics and health output.
		Name() string

		// Load returns the full list in stored order.
		Load(ctx context.Context) (model.List, error)

		// Replace persists list as the complete new state.
		Replace(ctx context.Context, list model.List) error

		// Ping checks that the backend is reachable.
		Ping(ctx context.Context) error
	}

	// RecordStore is implemented by backends that can write single records
	// without rewriting the whole list.
	RecordStore interface {
		InsertRecord(ctx context.Context, record model.Record) error
		UpdateRecord(ctx context.Context, previousID string, record model.Record) error
		DeleteRecord(ctx context.Context, id string) error
	}

	// Closer is implemented by backends holding connections.
	Closer interface {
		Close(ctx context.Context) error
	}
)
