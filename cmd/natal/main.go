package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/astrolark/natal-chart-service/internal/adapter/horizonapi"
	httpadapter "github.com/astrolark/natal-chart-service/internal/adapter/http"
	kafkaadapter "github.com/astrolark/natal-chart-service/internal/adapter/kafka"
	"github.com/astrolark/natal-chart-service/internal/cache"
	"github.com/astrolark/natal-chart-service/internal/config"
	"github.com/astrolark/natal-chart-service/internal/domain"
	"github.com/astrolark/natal-chart-service/internal/observability"
	"github.com/astrolark/natal-chart-service/internal/service"
	"github.com/astrolark/natal-chart-service/internal/storage/migrations"
	"github.com/astrolark/natal-chart-service/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	store := postgres.NewChartRecordStore(pool)
	chartCache := cache.NewChartCache(store, cfg.CacheRetention, clockwork.NewRealClock(), logger)

	provider := horizonapi.NewClient(cfg.ProviderBaseURL, cfg.ProviderToken, cfg.ProviderTimeout, logger)

	// Publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var publisher service.ChartPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaChartTopic, logger)
		publisher = writer
		logger.Info("chart publishing enabled", "topic", cfg.KafkaChartTopic)
	} else {
		logger.Info("chart publishing disabled")
	}

	scheme := domain.RulershipScheme(cfg.RulershipScheme)
	svc := service.New(provider, chartCache, publisher, scheme, logger, metrics)
	ready := service.NewReadinessChecker(store, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, ready, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start stale-chart eviction.
	go chartCache.RunEvictionLoop(ctx, cfg.EvictInterval)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
