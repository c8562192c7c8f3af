package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joacominatel/platewise/internal/application"
	"github.com/joacominatel/platewise/internal/domain"
	"github.com/joacominatel/platewise/internal/infrastructure/api"
	"github.com/joacominatel/platewise/internal/infrastructure/auth"
	"github.com/joacominatel/platewise/internal/infrastructure/cache"
	"github.com/joacominatel/platewise/internal/infrastructure/config"
	"github.com/joacominatel/platewise/internal/infrastructure/database"
	"github.com/joacominatel/platewise/internal/infrastructure/logging"
	"github.com/joacominatel/platewise/internal/infrastructure/metrics"
	"github.com/joacominatel/platewise/internal/infrastructure/postgres"
	"github.com/joacominatel/platewise/internal/infrastructure/worker"
)

// cacheCleanupInterval is how often expired in-memory insights are dropped
const cacheCleanupInterval = time.Minute

func main() {
	logger := logging.New()
	logger.Info("platewise starting up")

	if err := run(logger); err != nil {
		logger.Error("application failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(logger *logging.Logger) error {
	// load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err.Error())
		return err
	}

	logger = logging.NewWithLevel(logging.ParseLevel(cfg.Log.Level))

	// establish database connection
	conn, err := database.New(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	// run migrations
	migrator := database.NewMigrator(conn, logger)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := migrator.Run(ctx); err != nil {
		return err
	}

	// verify health after migrations
	if err := conn.HealthCheck(ctx); err != nil {
		return err
	}

	logger.Info("platewise infrastructure ready", "schema", conn.Schema())

	// initialize prometheus metrics
	appMetrics := metrics.New()
	logger.Info("prometheus metrics initialized")

	// initialize repositories
	pool := conn.Pool()
	profileRepo := postgres.NewProfileRepository(pool)
	mealRepo := postgres.NewMealLogRepository(pool)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	readyChecks := map[string]api.Pinger{"database": conn}

	// insight cache: redis when reachable, otherwise a bounded in-memory map
	var insightCache application.InsightCache
	redisClient, err := cache.NewRedisClient(cache.RedisConfig{URL: cfg.Redis.URL}, logger)
	if err != nil {
		logger.Error("failed to create redis client", "error", err.Error())
		return err
	}
	if redisClient != nil {
		if err := redisClient.Connect(ctx); err != nil {
			logger.Warn("redis connection failed, falling back to in-memory cache", "error", err.Error())
		} else {
			defer redisClient.Close()
			insightCache = redisClient
			readyChecks["redis"] = api.PingFunc(redisClient.HealthCheck)
			logger.Info("redis insight cache enabled")
		}
	}
	if insightCache == nil {
		memoryCache := cache.NewMemoryCache(cfg.Engine.InsightCacheMaxEntries)
		go memoryCache.RunCleanup(workerCtx, cacheCleanupInterval)
		insightCache = memoryCache
		logger.Info("in-memory insight cache enabled", "max_entries", cfg.Engine.InsightCacheMaxEntries)
	}

	// initialize meal ingestion worker (async buffer pattern)
	ingestionWorker := worker.NewMealIngestionWorker(mealRepo, worker.DefaultMealIngestionConfig(), logger).
		WithMetrics(appMetrics)

	// start the ingestion worker before accepting requests
	ingestionWorker.Start(workerCtx)

	// initialize use cases
	progression := domain.DefaultProgressionConfig()
	progression.LookbackDays = cfg.Engine.ProgressionLookbackDays

	loader := application.NewInsightLoader(profileRepo, mealRepo, application.InsightsConfig{
		DefaultTimezone: cfg.Engine.DefaultTimezone,
		Progression:     progression,
		CacheTTL:        cfg.Engine.InsightCacheTTL,
	}, logger).
		WithCache(insightCache).
		WithMetrics(appMetrics)

	logMealUseCase := application.NewLogMealUseCase(mealRepo, profileRepo, logger).
		WithEntryChannel(ingestionWorker.EntryChannel()). // enable async mode
		WithDefaultTimezone(cfg.Engine.DefaultTimezone)

	// initialize http server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = ":" + cfg.Server.Port

	server := api.NewServer(serverConfig, logger)

	// register routes
	api.RegisterRoutes(server.Echo(), api.RouterConfig{
		LogMealUseCase: logMealUseCase,
		Insights: api.InsightUseCases{
			Calendar: application.NewGetCalendarUseCase(loader, logger),
			Trends:   application.NewGetTrendsUseCase(loader, logger),
			Compare:  application.NewComparePeriodsUseCase(loader, logger),
			Progress: application.NewGetProgressUseCase(loader, logger),
			Momentum: application.NewGetMomentumUseCase(loader, logger),
		},
		TokenValidator: auth.NewJWTValidator(cfg.Auth.JWTSecret),
		ReadyChecks:    readyChecks,
		Logger:         logger,
		Metrics:        appMetrics,
	})

	// start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		if err != nil {
			logger.Error("http server error", "error", err.Error())
		}
	}

	logger.Info("platewise shutting down")

	// stop accepting requests first so nothing sends on a closed entry channel
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer shutdownCancel()

	shutdownErr := server.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		logger.Error("http server shutdown error", "error", shutdownErr.Error())
	}

	// stop background loops, then drain the ingestion buffer
	workerCancel()
	ingestionWorker.Stop()

	logger.Info("platewise shutdown complete")
	return shutdownErr
}
