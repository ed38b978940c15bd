package commands

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
	DeleteRecordCommand struct {
		Index int
	}

	DeleteRecordResult struct {
		List    model.List
		Deleted model.Record
	}

	DeleteRecordCommandHandler = decorator.CommandHandler[DeleteRecordCommand, DeleteRecordResult]

	deleteRecordCommandHandler struct {
		listService ports.ListService
	}
)

func NewDeleteRecordCommandHandler(
	svc ports.ListService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) DeleteRecordCommandHandler {
	return decorator.ApplyCommandDecorators[DeleteRecordCommand, DeleteRecordResult](
		deleteRecordCommandHandler{listService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h deleteRecordCommandHandler) Handle(ctx context.Context, cmd DeleteRecordCommand) (DeleteRecordResult, error) {
	list, deleted, err := h.listService.Delete(ctx, cmd.Index)
	if err != nil {
		return DeleteRecordResult{}, err
	}

	return DeleteRecordResult{List: list, Deleted: deleted}, nil
}
