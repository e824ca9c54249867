package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"account_sync/internal/api"
	"account_sync/internal/config"
	"account_sync/internal/endpoint"
	"account_sync/internal/publisher"
	"account_sync/internal/scheduler"
	"account_sync/internal/service"
	"account_sync/internal/source/esi"
	"account_sync/internal/storage/postgres"
	"account_sync/internal/throttle"
	"account_sync/internal/tracker"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if err := postgres.Migrate(db); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	versionStore := postgres.NewVersionStore(db, cfg.Sync.LockTimeout)
	statusStore := postgres.NewStatusStore(db)
	accountStore := postgres.NewAccountStore(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := accountStore.UpsertBatch(ctx, configuredAccounts(cfg.Accounts)); err != nil {
		logger.Error("failed to register accounts", "error", err)
		os.Exit(1)
	}

	statusTracker := tracker.New(statusStore, tracker.Config{
		ErrorBackoff:    cfg.Sync.ErrorBackoff,
		MaxErrorBackoff: cfg.Sync.MaxErrorBackoff,
		NotAllowedHold:  cfg.Sync.NotAllowedHold,
		StaleAfter:      cfg.Sync.StaleAfter,
	}, logger)

	client := esi.New(esi.Config{
		BaseURL:           cfg.API.BaseURL,
		UserAgent:         cfg.API.UserAgent,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Breaker: esi.BreakerConfig{
			MaxRequests:  cfg.API.Breaker.MaxRequests,
			Interval:     cfg.API.Breaker.Interval,
			Timeout:      cfg.API.Breaker.Timeout,
			FailureRatio: cfg.API.Breaker.FailureRatio,
			MinRequests:  cfg.API.Breaker.MinRequests,
		},
	}, esi.EnvTokenProvider{}, logger)

	registry, err := endpoint.NewRegistry(applyOverrides(esi.Descriptors(client), cfg.Endpoints, cfg.Sync.DefaultInterval)...)
	if err != nil {
		logger.Error("failed to build endpoint registry", "error", err)
		os.Exit(1)
	}

	limiter := throttle.New(0)
	limiter.ConfigureDescriptors(registry.All())

	// Left as a nil interface when disabled so the service skips publishing.
	var changes service.Publisher
	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		changes = rabbitMQ
	}

	syncService := service.NewSyncService(
		accountStore,
		versionStore,
		statusTracker,
		limiter,
		registry,
		changes,
		logger,
		cfg.Sync,
	)
	queryService := service.NewQueryService(versionStore, statusTracker, registry)
	adminService := service.NewAdminService(statusTracker, registry)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(api.NewHandler(queryService, adminService, syncService, db, logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	sched := scheduler.NewScheduler(syncService, cfg.Sync.Interval, cfg.Sync.CycleTimeout, logger)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	logger.Info("starting account syncer",
		"endpoints", len(registry.All()),
		"interval", cfg.Sync.Interval,
		"workers", cfg.Sync.Workers,
	)

	err = sched.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if serr := server.Shutdown(shutdownCtx); serr != nil {
		logger.Error("http server shutdown", "error", serr)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
