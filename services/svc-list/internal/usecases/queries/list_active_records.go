package queries

import (
	"context"

	"github.com/architeacher/device-list/pkg/decorator"
	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/pkg/metrics"
	"github.com/architeacher/device-list/services/svc-list/internal/domain/model"
	"github.com/architeacher/device-list/services/svc-list/internal/ports"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	ListActiveRecordsQuery struct{}

	ListActiveRecordsQueryHandler = decorator.QueryHandler[ListActiveRecordsQuery, model.Snapshot]

	listActiveRecordsQueryHandler struct {
		listService ports.ListService
	}
)

func (ListActiveRecordsQuery) ActionName() string { return "get_active_records" }

func NewListActiveRecordsQueryHandler(
	svc ports.ListService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ListActiveRecordsQueryHandler {
	return decorator.ApplyQueryDecorators[ListActiveRecordsQuery, model.Snapshot](
		listActiveRecordsQueryHandler{listService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h listActiveRecordsQueryHandler) Execute(ctx context.Context, _ ListActiveRecordsQuery) (model.Snapshot, error) {
	return h.listService.GetActive(ctx)
}
