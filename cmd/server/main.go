package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/adledger/internal/adapter/http"
	"github.com/iho/adledger/internal/adapter/http/handler"
	postgresRepo "github.com/iho/adledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/adledger/internal/adapter/repository/redis"
	"github.com/iho/adledger/internal/infrastructure/config"
	"github.com/iho/adledger/internal/infrastructure/device"
	"github.com/iho/adledger/internal/infrastructure/eventpublisher"
	"github.com/iho/adledger/internal/infrastructure/logger"
	"github.com/iho/adledger/internal/infrastructure/metrics"
	"github.com/iho/adledger/internal/infrastructure/postgres"
	"github.com/iho/adledger/internal/infrastructure/redis"
	"github.com/iho/adledger/internal/infrastructure/worker"
	"github.com/iho/adledger/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = appLogger

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx := context.Background()

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxConns:    cfg.DatabaseMaxConns,
		MinConns:    cfg.DatabaseMinConns,
		PingTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	appMetrics := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	adRepo := postgresRepo.NewAdRepository(pool)
	viewRepo := postgresRepo.NewViewRepository(pool)
	earningsRepo := postgresRepo.NewEarningsRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	deviceCache := redisRepo.NewDeviceSeenCache(redisClient, cfg.DeviceSeenTTL)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()

	// Initialize use cases
	settlementUC := usecase.NewSettlementUseCase(txManager, adRepo, viewRepo, earningsRepo, outboxRepo, deviceCache, retrier, idGen)
	adUC := usecase.NewAdUseCase(adRepo, idGen, appMetrics)
	earningsUC := usecase.NewEarningsUseCase(earningsRepo)
	reportUC := usecase.NewReportUseCase(adRepo, viewRepo)

	// Start settlement workers
	dispatcher := worker.NewDispatcher(worker.Config{
		Service:   settlementUC,
		Logger:    appLogger,
		Metrics:   appMetrics,
		Workers:   cfg.SettlementWorkers,
		QueueSize: cfg.SettlementQueueSize,
		Timeout:   cfg.SettlementTimeout,
	})
	dispatcher.Start()

	// Start outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(nil),
		Metrics:    appMetrics,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && publisherCtx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Initialize handlers
	resolver := device.NewResolver(cfg.DeviceCookieName)
	viewHandler := handler.NewViewHandler(adUC, resolver, dispatcher, appMetrics, cfg.FallbackRedirectURL)
	adHandler := handler.NewAdHandler(adUC)
	earningsHandler := handler.NewEarningsHandler(earningsUC)
	reportHandler := handler.NewReportHandler(reportUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ViewHandler:      viewHandler,
		AdHandler:        adHandler,
		EarningsHandler:  earningsHandler,
		ReportHandler:    reportHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Logger:           appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown: stop accepting requests, then drain queued
	// settlements so accepted views still get billed.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	dispatcher.Stop()
	stopPublisher()

	log.Info().Msg("server stopped")
}
