package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"lumosguard/internal/api"
	"lumosguard/internal/api/handlers"
	"lumosguard/internal/config"
	"lumosguard/internal/domain/services"
	"lumosguard/internal/domain/services/ai"
	"lumosguard/internal/infrastructure/cache"
	"lumosguard/internal/infrastructure/database"
	"lumosguard/internal/infrastructure/database/repository"
	"lumosguard/pkg/logger"
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
		Msg("starting LumosGuard")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional infrastructure: the engine runs without either
	db, redisCache := initInfrastructure(ctx, cfg, log)
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	var assessments *repository.AssessmentRepository
	var history services.AssessmentHistory
	if db != nil {
		assessments = repository.NewAssessmentRepository(db.Pool())
		history = assessments
		log.Info().Msg("assessment history enabled")
	} else {
		log.Warn().Msg("running without database - assessment history disabled")
	}

	var assessmentCache services.AssessmentCache
	if redisCache != nil {
		assessmentCache = redisCache
	}

	// Signal providers
	urlClient := services.NewGoogleSafeBrowsingClient(services.SafeBrowsingConfig{
		APIKey:  cfg.Providers.SafeBrowsing.APIKey,
		Timeout: cfg.Providers.SafeBrowsing.Timeout,
	}, log)
	phoneClient := ai.NewNumverifyClient(ai.NumverifyConfig{
		APIKey:  cfg.Providers.Numverify.APIKey,
		Timeout: cfg.Providers.Numverify.Timeout,
	}, log)
	aiClient := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey:      cfg.Providers.OpenAI.APIKey,
		Model:       cfg.Providers.OpenAI.Model,
		Temperature: cfg.Providers.OpenAI.Temperature,
		MaxTokens:   cfg.Providers.OpenAI.MaxTokens,
		Timeout:     cfg.Providers.OpenAI.Timeout,
	}, log)

	// Analysis pipeline
	collector := services.NewSignalCollector(urlClient, phoneClient, aiClient, cfg.Providers.Timeout, log)
	scorer := services.NewMLScorerClient(cfg.MLScorer, log)
	engine := services.NewAnalysisEngine(
		services.NewMessageParser(),
		collector,
		services.NewFeatureExtractor(),
		scorer,
		services.NewRiskAggregator(cfg.Scoring, log),
		assessmentCache,
		history,
		cfg.Cache.AssessmentTTL,
		log,
	)

	h := handlers.NewHandlers(handlers.Dependencies{
		Engine:      engine,
		Cache:       redisCache,
		Assessments: assessments,
		Scorer:      scorer,
		Logger:      log,
	})

	router := api.NewRouter(*cfg, h, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
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

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// initInfrastructure connects to the optional database and cache. Failures
// are logged and the service continues degraded.
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache) {
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		var err error
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to PostgreSQL, continuing without database")
			db = nil
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		var err error
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without cache")
			redisCache = nil
		}
	}

	return db, redisCache
}
