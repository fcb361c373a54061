package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pulppixels/pulppixels-backend/internal/delivery"
	"github.com/pulppixels/pulppixels-backend/pkg/config"
	"github.com/pulppixels/pulppixels-backend/pkg/db"
	"github.com/pulppixels/pulppixels-backend/pkg/logger"
	"github.com/pulppixels/pulppixels-backend/pkg/mailer"
	"github.com/pulppixels/pulppixels-backend/pkg/metrics"
	"github.com/pulppixels/pulppixels-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "delivery-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "delivery-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	mailClient, err := mailer.New(cfg.SMTP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap mailer", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()

	worker, err := delivery.NewWorker(delivery.WorkerParams{
		Config:     cfg.Delivery,
		Logger:     logg,
		DB:         dbClient,
		Repository: delivery.NewRepository(dbClient.DB()),
		Sender:     mailClient,
		Metrics:    metrics.NewDeliveryMetrics(registry),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting delivery worker")

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "delivery worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "delivery worker shutting down gracefully")
}
