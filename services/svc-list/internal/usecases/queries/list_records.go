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
	// ListRecordsQuery returns every record, or only active ones when
	// StatusFilter is "active".
	ListRecordsQuery struct {
		StatusFilter string
	}

	ListRecordsQueryHandler = decorator.QueryHandler[ListRecordsQuery, model.Snapshot]

	listRecordsQueryHandler struct {
		listService ports.ListService
	}
)

func (q ListRecordsQuery) ActionName() string {
	if q.StatusFilter != "" {
		return "get_records_by_status"
	}

	return "get_all_records"
}

func NewListRecordsQueryHandler(
	svc ports.ListService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ListRecordsQueryHandler {
	return decorator.ApplyQueryDecorators[ListRecordsQuery, model.Snapshot](
		listRecordsQueryHandler{listService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h listRecordsQueryHandler) Execute(ctx context.Context, query ListRecordsQuery) (model.Snapshot, error) {
	return h.listService.GetAll(ctx, query.StatusFilter)
}
