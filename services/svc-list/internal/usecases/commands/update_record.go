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
	UpdateRecordCommand struct {
		Index     int
		Candidate any
	}

	UpdateRecordCommandHandler = decorator.CommandHandler[UpdateRecordCommand, model.List]

	updateRecordCommandHandler struct {
		listService ports.ListService
	}
)

func NewUpdateRecordCommandHandler(
	svc ports.ListService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) UpdateRecordCommandHandler {
	return decorator.ApplyCommandDecorators[UpdateRecordCommand, model.List](
		updateRecordCommandHandler{listService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h updateRecordCommandHandler) Handle(ctx context.Context, cmd UpdateRecordCommand) (model.List, error) {
	return h.listService.Update(ctx, cmd.Index, cmd.Candidate)
}
