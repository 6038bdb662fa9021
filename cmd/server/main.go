package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/kratos-hub/backend/internal/cache"
	"github.com/anonto42/kratos-hub/backend/internal/handlers"
	"github.com/anonto42/kratos-hub/backend/internal/metrics"
	"github.com/anonto42/kratos-hub/backend/internal/repositories"
	"github.com/anonto42/kratos-hub/backend/internal/router"
	"github.com/anonto42/kratos-hub/backend/internal/validators"
	"github.com/anonto42/kratos-hub/backend/pkg/config"
	"github.com/anonto42/kratos-hub/backend/pkg/firebase"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize databases")
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	if err := db.Migrate(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	redisClient := cache.NewRedisClient(cfg.RedisURL, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	deps := router.Deps{
		Repos: router.Repositories{
			Users:         repositories.NewPostgresUserRepository(db.Postgres),
			Posts:         repositories.NewMongoPostRepository(db.MongoDB),
			Likes:         repositories.NewPostgresLikeRepository(db.Postgres),
			SavedPosts:    repositories.NewPostgresSavedPostRepository(db.Postgres),
			Notifications: repositories.NewPostgresNotificationRepository(db.Postgres),
		},
		LikersCache: cache.NewLikersCache(redisClient, cfg.LikersCacheTTL),
		JWTSecret:   cfg.JWTSecret,
		Limits:      handlers.FeedLimits{Default: cfg.FeedDefaultLimit, Max: cfg.FeedMaxLimit},
		Log:         logger,
	}

	// Initialize Firebase
	if cfg.AuthMode == config.AuthModeFirebase {
		authClient, err := firebase.NewAuthClient(ctx, cfg.FirebaseCredentialsPath, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize Firebase")
		}
		deps.Firebase = authClient
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.ErrorHandler(logger)

	router.SetupMiddleware(e, logger)
	router.SetupRoutes(e, deps)

	go metrics.Serve(ctx, cfg.MetricsPort, logger)

	go func() {
		logger.WithField("port", cfg.Port).Info("Server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown error")
	}
}
