package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ronicTakouugang/stockz/internal/api"
	"github.com/ronicTakouugang/stockz/internal/api/handlers"
	"github.com/ronicTakouugang/stockz/internal/cache"
	"github.com/ronicTakouugang/stockz/internal/config"
	"github.com/ronicTakouugang/stockz/internal/database"
	"github.com/ronicTakouugang/stockz/internal/logging"
	"github.com/ronicTakouugang/stockz/internal/middleware"
	"github.com/ronicTakouugang/stockz/internal/services"
	"github.com/ronicTakouugang/stockz/internal/telemetry"
	"github.com/ronicTakouugang/stockz/pkg/forecast"
	"github.com/ronicTakouugang/stockz/pkg/gemini"
	"github.com/ronicTakouugang/stockz/pkg/marketdata"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)
	ctx := context.Background()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry, cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to shutdown tracing")
		}
	}()

	if cfg.Telemetry.Enabled && cfg.Telemetry.ExportLogs {
		provider, err := logging.NewOTLPProvider(ctx, logging.OTLPConfig{
			Endpoint:       cfg.Telemetry.OTLPEndpoint,
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: cfg.Telemetry.ServiceVersion,
			Environment:    cfg.Environment,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize log export: %w", err)
		}
		defer func() {
			if err := provider.Shutdown(context.Background()); err != nil {
				logger.WithError(err).Warn("Failed to shutdown log export")
			}
		}()
		logger.AddHook(logging.NewOTLPHook(provider.Logger(telemetry.InstrumentationName), logger.GetLevel()))
	}

	var (
		db    *database.PostgresDB
		redis *database.RedisClient
	)
	if cfg.Quota.Backend == "postgres" {
		db, err = database.NewPostgresConnection(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()
	}
	seriesTTL := config.Duration(cfg.Redis.SeriesCacheTTL, 0)
	if cfg.Quota.Backend == "redis" || seriesTTL > 0 {
		redis, err = database.NewRedisConnection(ctx, cfg.Redis, logger)
		switch {
		case err != nil && cfg.Quota.Backend == "redis":
			return err
		case err != nil:
			logger.WithError(err).Warn("Redis unavailable, series cache disabled")
		default:
			defer redis.Close()
		}
	}

	quotaStore, err := newQuotaStore(ctx, cfg.Quota.Backend, db, redis)
	if err != nil {
		return err
	}

	prices := newPriceSource(&cfg.MarketData, redis, seriesTTL, logger)
	reasoner, err := gemini.NewClient(ctx, &cfg.Reasoning, logger)
	if err != nil {
		return err
	}
	breaker := services.NewCircuitBreaker("reasoner", services.CircuitBreakerConfig{
		FailureThreshold: cfg.Reasoning.BreakerFailureThreshold,
		OpenTimeout:      config.Duration(cfg.Reasoning.BreakerOpenTimeout, time.Minute),
	}, logger)

	var signals services.UpstreamSignalSource
	if cfg.Forecast.Enabled {
		signals = forecast.NewClient(&cfg.Forecast, logger)
	}

	analysis := services.NewAnalysisService(
		prices,
		reasoner,
		signals,
		services.NewQuotaGate(quotaStore, cfg.Quota.DailyLimit, logger),
		services.NewBacktester(services.BacktestOptions{
			ShortWindow:        cfg.Backtest.ShortWindow,
			LongWindow:         cfg.Backtest.LongWindow,
			TransactionCostPct: cfg.Backtest.TransactionCostPct,
		}, logger),
		breaker,
		services.AnalysisOptionsFromConfig(cfg),
		logger,
	)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	deps := api.Dependencies{
		Analysis:       analysis,
		Auth:           middleware.NewAuthMiddleware(cfg.Security.JWTSecret),
		Breaker:        breaker,
		Logger:         logger,
		ServiceName:    cfg.Telemetry.ServiceName,
		Version:        cfg.Telemetry.ServiceVersion,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	// Leave the checkers as untyped nil when a backend is not in use.
	if db != nil {
		deps.DB = db
	}
	if redis != nil {
		deps.Redis = redis
		deps.RedisPool = redis
	}
	if cached, ok := prices.(*cache.CachedPriceSource); ok {
		deps.SeriesCache = cached
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(deps),
		ReadTimeout:       config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout:      config.Duration(cfg.Server.WriteTimeout, 90*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"port":          cfg.Server.Port,
			"environment":   cfg.Environment,
			"quota_backend": cfg.Quota.Backend,
			"provider":      cfg.MarketData.Provider,
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited gracefully")
	return nil
}

// newQuotaStore picks the quota backend. The postgres store applies its
// schema before use.
func newQuotaStore(ctx context.Context, backend string, db *database.PostgresDB, redis *database.RedisClient) (services.QuotaStore, error) {
	switch backend {
	case "postgres":
		if db == nil {
			return nil, errors.New("postgres quota backend requires a database connection")
		}
		repo := database.NewQuotaRepository(database.NewTracedPool(db.Pool))
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	case "redis":
		if redis == nil {
			return nil, errors.New("redis quota backend requires a redis connection")
		}
		return cache.NewRedisQuotaStore(redis.Client), nil
	case "memory", "":
		return cache.NewMemoryQuotaStore(), nil
	default:
		return nil, fmt.Errorf("unknown quota backend %q", backend)
	}
}

// newPriceSource selects the market data provider and wraps it with the
// Redis series cache when one is available.
func newPriceSource(cfg *config.MarketDataConfig, redis *database.RedisClient, ttl time.Duration, logger *logrus.Logger) services.PriceSource {
	var source cache.SeriesFetcher
	switch cfg.Provider {
	case "yahoo":
		source = marketdata.NewYahooClient(cfg, logger)
	default:
		source = marketdata.NewFinnhubClient(cfg, logger)
	}

	if redis == nil || ttl <= 0 {
		return source
	}
	return cache.NewCachedPriceSource(source, redis.Client, ttl, logger)
}

var _ handlers.AnalysisService = (*services.AnalysisService)(nil)
