// Package app wires configuration, backends and the api, worker and reaper
// roles of flightholdd.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"flight-hold-service/internal/config"
	"flight-hold-service/internal/provider"
	"flight-hold-service/internal/provider/amadeus"
	"flight-hold-service/internal/service"
	httptransport "flight-hold-service/internal/transport/http"
	"flight-hold-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// InitLogger installs a JSON logger on stdout as the default logger.
func InitLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// Run starts the roles enabled in cfg and blocks until ctx is cancelled or
// one of them fails.
func Run(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) error {
	services, err := cfg.EnabledServices()
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	queue, closeQueue, err := openQueue(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeQueue()

	jobSvc := service.NewJobService(store, queue, logger)

	var pool *worker.Pool
	if services[config.ServiceWorker] {
		if pool, err = newPool(cfg, jobSvc, store, logger); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if services[config.ServiceAPI] {
		h := httptransport.NewHandler(jobSvc, logger)
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httptransport.Routes(h, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("http server started", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if pool != nil {
		g.Go(func() error {
			pool.Run(gctx)
			return nil
		})
	}

	if services[config.ServiceReaper] {
		reaper := worker.NewReaper(store, queue, worker.ReaperConfig{
			Interval:       cfg.Reaper.Interval,
			ResultTTL:      cfg.ResultTTL,
			RunningTimeout: cfg.Reaper.RunningTimeout,
		}, logger)
		g.Go(func() error {
			reaper.Run(gctx)
			return nil
		})
	}

	return g.Wait()
}

func newPool(cfg config.AppConfig, jobSvc *service.JobService, store Store, logger *slog.Logger) (*worker.Pool, error) {
	profile, err := provider.LoadProfile(cfg.TravelerProfilePath)
	if err != nil {
		return nil, err
	}
	client := amadeus.New(amadeus.Config{
		BaseURL:      cfg.Amadeus.BaseURL,
		ClientID:     cfg.Amadeus.ClientID,
		ClientSecret: cfg.Amadeus.ClientSecret,
		Timeout:      cfg.Amadeus.Timeout,
		Currency:     cfg.Amadeus.Currency,
		MaxOffers:    cfg.Amadeus.MaxOffers,
	})
	exec := worker.NewExecutor(client, store, profile, worker.ExecutorConfig{
		MaxAttempts: cfg.Executor.MaxAttempts,
		RetryDelay:  cfg.Executor.RetryDelay,
	}, logger)

	logger.Info("worker config",
		"workers", cfg.Workers,
		"max_attempts", cfg.Executor.MaxAttempts,
		"retry_delay", cfg.Executor.RetryDelay.String(),
	)
	return worker.NewPool(jobSvc, exec, cfg.Workers, cfg.ClaimTimeout, logger), nil
}
