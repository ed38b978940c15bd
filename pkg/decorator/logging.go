package decorator

import (
	"context"
	"time"

	"github.com/architeacher/device-list/pkg/logger"
)

type (
	commandLoggingDecorator[C Command, R any] struct {
		base   CommandHandler[C, R]
		logger logger.Logger
	}

	queryLoggingDecorator[Q Query, R Result] struct {
		base   QueryHandler[Q, R]
		logger logger.Logger
	}
)

func (d commandLoggingDecorator[C, R]) Handle(ctx context.Context, cmd C) (result R, err error) {
	action := generateActionName(cmd)
	log := d.logger.WithContext(ctx).With().
		Str("command", action).
		Logger()

	start := time.Now()

	log.Debug().Msg("executing command")

	defer func() {
		elapsed := time.Since(start)

		if err != nil {
			log.Warn().Err(err).Dur("duration", elapsed).Msg("command failed")

			return
		}

		log.Info().Dur("duration", elapsed).Msg("command executed")
	}()

	return d.base.Handle(ctx, cmd)
}

func (d queryLoggingDecorator[Q, R]) Execute(ctx context.Context, query Q) (result R, err error) {
	action := queryActionName(query)
	log := d.logger.WithContext(ctx).With().
		Str("query", action).
		Logger()

	start := time.Now()

	log.Debug().Msg("executing query")

	defer func() {
		elapsed := time.Since(start)

		if err != nil {
			log.Warn().Err(err).Dur("duration", elapsed).Msg("query failed")

			return
		}

		if isDegraded(result) {
			log.Warn().Dur("duration", elapsed).Msg("query served a degraded result")

			return
		}

		log.Debug().Dur("duration", elapsed).Msg("query executed")
	}()

	return d.base.Execute(ctx, query)
}
