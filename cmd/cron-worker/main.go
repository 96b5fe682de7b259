package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/directsales-backend/internal/clients"
	"github.com/angelmondragon/directsales-backend/internal/cron"
	"github.com/angelmondragon/directsales-backend/internal/inventory"
	"github.com/angelmondragon/directsales-backend/internal/sales"
	"github.com/angelmondragon/directsales-backend/pkg/config"
	"github.com/angelmondragon/directsales-backend/pkg/db"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
	"github.com/angelmondragon/directsales-backend/pkg/metrics"
	"github.com/angelmondragon/directsales-backend/pkg/migrate"
	"github.com/angelmondragon/directsales-backend/pkg/outbox"
	"github.com/angelmondragon/directsales-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	outboxRepo := outbox.NewRepository(gormDB)
	salesService, err := sales.NewService(sales.ServiceParams{
		Ledger:    sales.NewRepository(gormDB),
		Inventory: inventory.NewRepository(gormDB),
		Clients:   clients.NewRepository(gormDB),
		Events:    outbox.NewService(outboxRepo, dbClient, logg),
		Metrics:   metrics.NewSalesMetrics(prometheus.DefaultRegisterer),
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	orphanJob, err := cron.NewOrphanedSalesJob(cron.OrphanedSalesJobParams{
		Logger: logg,
		Sales:  salesService,
		Grace:  cfg.Sales.OrphanGracePeriod,
		Batch:  cfg.Cron.AdjustmentsBatch,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orphaned sales job", err)
		os.Exit(1)
	}
	adjustmentsJob, err := cron.NewInventoryAdjustmentsJob(cron.InventoryAdjustmentsJobParams{
		Logger:      logg,
		Sales:       salesService,
		Batch:       cfg.Cron.AdjustmentsBatch,
		MaxAttempts: cfg.Cron.MaxAdjustTries,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory adjustments job", err)
		os.Exit(1)
	}
	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:      logg,
		DB:          dbClient,
		Repository:  outboxRepo,
		Retention:   cfg.Outbox.Retention,
		MaxAttempts: cfg.Outbox.MaxAttempts,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(orphanJob, adjustmentsJob, retentionJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": cfg.Cron.Interval.String(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
