package infrastructure

import (
	"context"
	"slices"
	"time"

	appLogger "github.com/architeacher/device-list/pkg/logger"
	"github.com/architeacher/device-list/services/svc-list/internal/config"
	"github.com/redis/go-redis/v9"
)

type KeydbClient struct {
	client *redis.Client
	logger appLogger.Logger
}

func NewKeyDBClient(cfg config.KeyDB, logger appLogger.Logger) *KeydbClient {
	opts := &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           int(cfg.DB),
		PoolSize:     int(cfg.PoolSize),
		MinIdleConns: int(cfg.MinIdleConns),
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   int(cfg.MaxRetries),
	}

	return &KeydbClient{
		client: redis.NewClient(opts),
		logger: logger.Component("keydb"),
	}
}

func (c *KeydbClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *KeydbClient) Close() error {
	return c.client.Close()
}

func (c *KeydbClient) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	startTime := time.Now()

	fields, err := c.client.HGetAll(ctx, key).Result()

	c.logger.Debug().
		Str("key", key).
		Int("fields", len(fields)).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Bool("success", err == nil).
		Msg("keydb hgetall operation")

	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("keydb hgetall operation failed")

		return nil, err
	}

	return fields, nil
}

// HSet writes all fields in one command, so readers never see a partial update.
func (c *KeydbClient) HSet(ctx context.Context, key string, fields map[string]any) error {
	startTime := time.Now()

	err := c.client.HSet(ctx, key, fields).Err()

	c.logger.Debug().
		Str("key", key).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Bool("success", err == nil).
		Msg("keydb hset operation")

	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("keydb hset operation failed")
	}

	return err
}

// HSetNX sets each field only where it is absent, inside one MULTI/EXEC. It
// reports whether every field was newly written.
func (c *KeydbClient) HSetNX(ctx context.Context, key string, fields map[string]any) (bool, error) {
	startTime := time.Now()

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}

	slices.Sort(names)

	cmds := make([]*redis.BoolCmd, 0, len(names))

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, name := range names {
			cmds = append(cmds, pipe.HSetNX(ctx, key, name, fields[name]))
		}

		return nil
	})

	c.logger.Debug().
		Str("key", key).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Bool("success", err == nil).
		Msg("keydb hsetnx operation")

	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("keydb hsetnx operation failed")

		return false, err
	}

	created := true
	for _, cmd := range cmds {
		created = created && cmd.Val()
	}

	return created, nil
}
