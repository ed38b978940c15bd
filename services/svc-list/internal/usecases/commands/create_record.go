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
	// CreateRecordCommand carries the raw candidate so validation stays in the service.
	CreateRecordCommand struct {
		Candidate any
	}

	CreateRecordCommandHandler = decorator.CommandHandler[CreateRecordCommand, model.List]

	createRecordCommandHandler struct {
		listService ports.ListService
	}
)

func NewCreateRecordCommandHandler(
	svc ports.ListService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CreateRecordCommandHandler {
	return decorator.ApplyCommandDecorators[CreateRecordCommand, model.List](
		createRecordCommandHandler{listService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h createRecordCommandHandler) Handle(ctx context.Context, cmd CreateRecordCommand) (model.List, error) {
	return h.listService.Create(ctx, cmd.Candidate)
}
