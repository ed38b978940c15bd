package usecases

import (
	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/pkg/metrics"
	"github.com/architeacher/device-list/services/svc-list/internal/ports"
	"github.com/architeacher/device-list/services/svc-list/internal/usecases/commands"
	"github.com/architeacher/device-list/services/svc-list/internal/usecases/queries"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Commands struct {
		CreateRecord commands.CreateRecordCommandHandler
		UpdateRecord commands.UpdateRecordCommandHandler
		DeleteRecord commands.DeleteRecordCommandHandler
		ToggleRecord commands.ToggleRecordCommandHandler
		ReplaceList  commands.ReplaceListCommandHandler
	}

	Queries struct {
		ListRecords       queries.ListRecordsQueryHandler
		ListActiveRecords queries.ListActiveRecordsQueryHandler
		FetchLiveness     queries.FetchLivenessQueryHandler
		FetchReadiness    queries.FetchReadinessQueryHandler
	}

	Application struct {
		Commands Commands
		Queries  Queries
	}
)

func NewApplication(
	listSvc ports.ListService,
	healthChecker ports.HealthChecker,
	log logger.Logger,
	tracerProvider otelTrace.TracerProvider,
	metricsClient metrics.Client,
) *Application {
	return &Application{
		Commands: Commands{
			CreateRecord: commands.NewCreateRecordCommandHandler(listSvc, log, metricsClient, tracerProvider),
			UpdateRecord: commands.NewUpdateRecordCommandHandler(listSvc, log, metricsClient, tracerProvider),
			DeleteRecord: commands.NewDeleteRecordCommandHandler(listSvc, log, metricsClient, tracerProvider),
			ToggleRecord: commands.NewToggleRecordCommandHandler(listSvc, log, metricsClient, tracerProvider),
			ReplaceList:  commands.NewReplaceListCommandHandler(listSvc, log, metricsClient, tracerProvider),
		},
		Queries: Queries{
			ListRecords:       queries.NewListRecordsQueryHandler(listSvc, log, metricsClient, tracerProvider),
			ListActiveRecords: queries.NewListActiveRecordsQueryHandler(listSvc, log, metricsClient, tracerProvider),
			FetchLiveness:     queries.NewFetchLivenessQueryHandler(log, metricsClient, tracerProvider),
			FetchReadiness:    queries.NewFetchReadinessQueryHandler(healthChecker, log, metricsClient, tracerProvider),
		},
	}
}
