package infrastructure

import (
	"context"
	"fmt"

	"github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/services/svc-list/internal/config"
	"github.com/cenkalti/backoff/v5"
)

// ConnectWithRetry retries connect with exponential backoff until it
// succeeds, the attempts run out or ctx is done.
func ConnectWithRetry[T any](
	ctx context.Context,
	cfg config.Backoff,
	log logger.Logger,
	target string,
	connect func(ctx context.Context) (T, error),
) (T, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = cfg.BaseDelay
	expBackoff.Multiplier = cfg.Multiplier
	expBackoff.RandomizationFactor = cfg.Jitter
	expBackoff.MaxInterval = cfg.MaxDelay

	attempt := 0

	operation := func() (T, error) {
		attempt++

		result, err := connect(ctx)
		if err != nil {
			log.Warn().Err(err).
				Str("target", target).
				Int("attempt", attempt).
				Msg("connection attempt failed")

			return result, err
		}

		return result, nil
	}

	maxTries := cfg.MaxAttempts
	if maxTries == 0 {
		maxTries = 1
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithMaxTries(maxTries),
		backoff.WithBackOff(expBackoff),
	)
	if err != nil {
		var zero T

		return zero, fmt.Errorf("connecting to %s after %d attempts: %w", target, attempt, err)
	}

	return result, nil
}
