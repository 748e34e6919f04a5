// @title Flight Hold Service API
// @version 1.0
// @description Asynchronous flight search, price and hold jobs.
// @BasePath /
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"flight-hold-service/internal/app"
	"flight-hold-service/internal/config"
)

func main() {
	logger := app.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	logger.Info("flightholdd starting",
		"services", cfg.Services,
		"store_backend", cfg.StoreBackend,
		"queue_backend", cfg.QueueBackend,
	)

	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Error("flightholdd stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("flightholdd stopped")
}
