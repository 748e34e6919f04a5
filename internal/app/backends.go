package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"flight-hold-service/internal/config"
	"flight-hold-service/internal/repository/memory"
	"flight-hold-service/internal/repository/postgresql"
	"flight-hold-service/internal/service"
	"flight-hold-service/internal/worker"
)

// Store is what the process needs from a Result Store backend.
type Store interface {
	service.JobRepository
	worker.JobStore
	worker.ReaperStore
}

func openStore(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (Store, func(), error) {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Info("using memory result store", "result_ttl", cfg.ResultTTL.String())
		return memory.NewJobRepository(cfg.ResultTTL), func() {}, nil
	}

	pool, err := postgresql.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pg: %w", err)
	}
	if cfg.Postgres.RunMigrations {
		if err := postgresql.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	logger.Info("using postgres result store",
		"postgres_dsn", config.RedactDSN(cfg.Postgres.DSN),
		"result_ttl", cfg.ResultTTL.String(),
	)
	return postgresql.NewJobRepository(pool, cfg.ResultTTL), pool.Close, nil
}

func openQueue(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (service.Queue, func(), error) {
	if cfg.QueueBackend == config.BackendMemory {
		logger.Info("using memory queue")
		return service.NewMemoryQueue(0), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	logger.Info("using redis queue",
		"redis_addr", cfg.Redis.Addr,
		"queue_key", cfg.Redis.QueueKey,
		"processing_key", cfg.Redis.ProcessingKey,
	)
	q := service.NewRedisQueue(rdb, service.QueueKeys{
		QueueKey:      cfg.Redis.QueueKey,
		ProcessingKey: cfg.Redis.ProcessingKey,
	})
	return q, func() { _ = rdb.Close() }, nil
}
