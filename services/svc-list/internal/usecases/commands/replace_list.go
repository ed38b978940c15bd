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
	ReplaceListCommand struct {
		Candidates any
	}

	ReplaceListCommandHandler = decorator.CommandHandler[ReplaceListCommand, model.List]

	replaceListCommandHandler struct {
		listService ports.ListService
	}
)

func NewReplaceListCommandHandler(
	svc ports.ListService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ReplaceListCommandHandler {
	return decorator.ApplyCommandDecorators[ReplaceListCommand, model.List](
		replaceListCommandHandler{listService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h replaceListCommandHandler) Handle(ctx context.Context, cmd ReplaceListCommand) (model.List, error) {
	return h.listService.ReplaceAll(ctx, cmd.Candidates)
}
