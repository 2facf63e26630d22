package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pageza/pantrychef/backend/config"
	"github.com/pageza/pantrychef/backend/internal/api"
	"github.com/pageza/pantrychef/backend/internal/database"
	"github.com/pageza/pantrychef/backend/internal/detector"
	"github.com/pageza/pantrychef/backend/internal/logging"
	"github.com/pageza/pantrychef/backend/internal/middleware"
	"github.com/pageza/pantrychef/backend/internal/router"
	"github.com/pageza/pantrychef/backend/internal/server"
	"github.com/pageza/pantrychef/backend/internal/service"
)

func main() {
	// .env is optional; real deployments use the environment and secrets
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "migrations"
	}
	if err := database.RunMigrations(ctx, db, migrationsDir, logger); err != nil {
		return err
	}

	redisClient, err := database.NewRedisClient(cfg.Redis, logger)
	if err != nil {
		// rate limiting and the recommendation cache are optional
		logger.Warn("redis unavailable, continuing without it", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var archive service.ImageArchive
	s3Config, err := config.NewS3Config(ctx, cfg.Storage)
	if err != nil {
		logger.Warn("upload archive disabled", zap.Error(err))
	} else if s3Config != nil {
		archive = s3Config
	}

	det := detector.NewHTTPDetector(detector.Options{
		BaseURL:           cfg.Detector.BaseURL,
		Timeout:           cfg.Detector.Timeout,
		MinConfidence:     cfg.Detector.MinConfidence,
		RequestsPerSecond: cfg.Detector.RequestsPerSec,
		Burst:             cfg.Detector.Burst,
		FailureThreshold:  cfg.Detector.FailureThreshold,
		OpenTimeout:       cfg.Detector.OpenTimeout,
	}, logger.Named("detector"))

	authService := service.NewAuthService(db, cfg.JWT.Secret, cfg.JWT.TTL)
	recipeService := service.NewRecipeService(db)
	services := api.Services{
		Auth:       authService,
		Recipes:    recipeService,
		Recommend:  service.NewRecommendService(recipeService, redisClient, cfg.Recommend.CacheTTL, cfg.Recommend.MaxResults, logger),
		Suggest:    service.NewSuggestService(recipeService, cfg.Recommend.VocabularyTTL, logger),
		Favourites: service.NewFavouriteService(db),
		Images:     service.NewImageService(det, archive, logger),
	}
	limiters := api.RateLimiters{
		Image:     middleware.NewImageRateLimiter(redisClient, cfg.RateLimit.ImageLimit, cfg.RateLimit.Window, logger),
		Recommend: middleware.NewRecommendRateLimiter(redisClient, cfg.RateLimit.RecommendLimit, cfg.RateLimit.Window, logger),
	}

	r := router.SetupRouter(cfg, db, services, limiters, logger)
	srv := server.New(cfg.Server, r, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
