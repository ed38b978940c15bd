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
	ToggleRecordCommand struct {
		Index int
	}

	ToggleRecordCommandHandler = decorator.CommandHandler[ToggleRecordCommand, model.Record]

	toggleRecordCommandHandler struct {
		listService ports.ListService
	}
)

func NewToggleRecordCommandHandler(
	svc ports.ListService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ToggleRecordCommandHandler {
	return decorator.ApplyCommandDecorators[ToggleRecordCommand, model.Record](
		toggleRecordCommandHandler{listService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h toggleRecordCommandHandler) Handle(ctx context.Context, cmd ToggleRecordCommand) (model.Record, error) {
	return h.listService.Toggle(ctx, cmd.Index)
}
