package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"pagesentry/internal/api"
	"pagesentry/internal/api/handlers"
	"pagesentry/internal/config"
	"pagesentry/internal/domain/services"
	"pagesentry/internal/feeds"
	"pagesentry/internal/grpc/healthsvc"
	"pagesentry/internal/infrastructure/cache"
	"pagesentry/internal/infrastructure/database"
	"pagesentry/internal/infrastructure/database/repository"
	"pagesentry/internal/rules"
	"pagesentry/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting PageSentry")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize infrastructure
	db, redisCache, err := initInfrastructure(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize infrastructure")
	}
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Initialize the report store (optional, postgres-backed)
	var reportRepo *repository.ReportRepository
	if db != nil {
		reportRepo = repository.NewReportRepository(db.Pool())
		log.Info().Msg("report store initialized with database")
	} else {
		log.Warn().Msg("running without database - report endpoints unavailable")
	}

	// Load the rule corpus. A failed load is non-fatal: the engine runs in
	// degraded, pattern-only mode until a reload succeeds.
	ruleSource := rules.NewFileLoader(cfg.Rules.IndicatorFile, cfg.Rules.AlertFile, log)
	store := services.NewKnowledgeStore(ruleSource, log)
	if err := store.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("rule corpus unavailable, analysis will run degraded")
	}

	// Threat feeds: registry, domain cache, refresh scheduler
	registry := feeds.NewRegistry(log)
	if err := feeds.RegisterDefaults(registry, cfg.Feeds, log); err != nil {
		log.Fatal().Err(err).Msg("failed to register feed connectors")
	}
	feedCache := feeds.NewDomainCache(redisCache, log)

	var scheduler *feeds.Scheduler
	if cfg.Feeds.Enabled {
		scheduler = feeds.NewScheduler(registry, feedCache, redisCache, cfg.Feeds, log)
		scheduler.Start(ctx)
	}

	// Scoring engine
	whitelistStore := cache.NewWhitelistStore(redisCache, log)
	weights := services.WeightsFromConfig(cfg.Scoring)
	engine := services.NewEngine(store, feedCache, whitelistStore, weights, log)
	log.Info().Int("rules", len(store.Rules())).Msg("scoring engine initialized")

	// Initialize handlers
	deps := handlers.Dependencies{
		Engine:     engine,
		Store:      store,
		Whitelist:  whitelistStore,
		FeedCache:  feedCache,
		Registry:   registry,
		Cache:      redisCache,
		Reports:    reportRepo,
		Logger:     log,
		AppVersion: cfg.App.Version,
	}
	h := handlers.NewHandlers(deps)

	// Create router
	router := api.NewRouter(*cfg, h, redisCache, log)
	httpHandler := router.Setup()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Start gRPC server (health service for orchestration probes)
	grpcListener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create gRPC listener")
	}

	grpcServer := grpc.NewServer()
	healthsvc.RegisterHealthServer(ctx, grpcServer, db, redisCache)

	go func() {
		log.Info().
			Str("addr", grpcListener.Addr().String()).
			Msg("starting gRPC server")
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Fatal().Err(err).Msg("gRPC server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	// Cancel context to stop background services
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Stop gRPC server
	grpcServer.GracefulStop()

	// Stop HTTP server
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Stop feed scheduler
	if scheduler != nil {
		scheduler.Stop()
	}

	log.Info().Msg("shutdown complete")
}

// initInfrastructure initializes database and cache connections
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache, error) {
	// Connect to PostgreSQL
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without database")
		// Don't fail, continue without database for development
	}

	// Connect to Redis
	redisCache, err := cache.NewRedis(ctx, cfg.Redis, log)
	if err != nil {
		return db, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return db, redisCache, nil
}
