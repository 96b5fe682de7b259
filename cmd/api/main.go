package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/directsales-backend/api/routes"
	"github.com/angelmondragon/directsales-backend/internal/auth"
	"github.com/angelmondragon/directsales-backend/internal/catalog"
	"github.com/angelmondragon/directsales-backend/internal/clients"
	"github.com/angelmondragon/directsales-backend/internal/inventory"
	"github.com/angelmondragon/directsales-backend/internal/sales"
	"github.com/angelmondragon/directsales-backend/internal/subscriptions"
	"github.com/angelmondragon/directsales-backend/internal/users"
	"github.com/angelmondragon/directsales-backend/pkg/auth/session"
	"github.com/angelmondragon/directsales-backend/pkg/config"
	"github.com/angelmondragon/directsales-backend/pkg/db"
	"github.com/angelmondragon/directsales-backend/pkg/logger"
	"github.com/angelmondragon/directsales-backend/pkg/metrics"
	"github.com/angelmondragon/directsales-backend/pkg/migrate"
	"github.com/angelmondragon/directsales-backend/pkg/outbox"
	"github.com/angelmondragon/directsales-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	salesMetrics := metrics.NewSalesMetrics(registry)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	gormDB := dbClient.DB()
	events := outbox.NewService(outbox.NewRepository(gormDB), dbClient, logg)
	userRepo := users.NewRepository(gormDB)
	inventoryRepo := inventory.NewRepository(gormDB)
	clientRepo := clients.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(gormDB))
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Store:           inventoryRepo,
		Events:          events,
		Logger:          logg,
		DefaultMinStock: cfg.Sales.DefaultMinStock,
	})
	if err != nil {
		logg.Error(ctx, "failed to create inventory service", err)
		os.Exit(1)
	}

	clientService, err := clients.NewService(clientRepo)
	if err != nil {
		logg.Error(ctx, "failed to create clients service", err)
		os.Exit(1)
	}

	salesService, err := sales.NewService(sales.ServiceParams{
		Ledger:    sales.NewRepository(gormDB),
		Inventory: inventoryRepo,
		Clients:   clientRepo,
		Events:    events,
		Metrics:   salesMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create sales service", err)
		os.Exit(1)
	}

	subscriptionService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Store:  userRepo,
		Cache:  redisClient,
		TTL:    cfg.Sales.SubscriptionCacheTTL,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create subscription service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Gatherer:      registry,
			HTTPMetrics:   httpMetrics,
			Sessions:      sessionManager,
			Auth:          authService,
			Catalog:       catalogService,
			Inventory:     inventoryService,
			Clients:       clientService,
			Sales:         salesService,
			Subscriptions: subscriptionService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "api server shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "api server stopped")
}
