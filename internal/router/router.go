package router

import (
	"time"

	"github.com/anonto42/kratos-hub/backend/internal/cache"
	"github.com/anonto42/kratos-hub/backend/internal/handlers"
	"github.com/anonto42/kratos-hub/backend/internal/metrics"
	"github.com/anonto42/kratos-hub/backend/internal/middleware"
	"github.com/anonto42/kratos-hub/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// Repositories bundles the storage layer injected into handlers
type Repositories struct {
	Users         repositories.UserRepository
	Posts         repositories.PostRepository
	Likes         repositories.LikeRepository
	SavedPosts    repositories.SavedPostRepository
	Notifications repositories.NotificationRepository
}

// Deps holds everything SetupRoutes needs. Exactly one of Firebase or
// JWTSecret selects the auth middleware; Firebase wins when both are set.
type Deps struct {
	Repos       Repositories
	LikersCache *cache.LikersCache
	Firebase    middleware.TokenVerifier
	JWTSecret   string
	Limits      handlers.FeedLimits
	Log         logrus.FieldLogger
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, log logrus.FieldLogger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.Round(time.Microsecond).String(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))
	e.Use(metrics.Middleware())
	log.Debug("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Deps) {
	log := deps.Log
	repos := deps.Repos

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api/v1")
	if deps.Firebase != nil {
		api.Use(middleware.FirebaseAuthMiddleware(deps.Firebase, repos.Users))
		log.Info("Firebase authentication middleware applied to /api/v1 group.")
	} else {
		api.Use(middleware.JWTAuthMiddleware(deps.JWTSecret))
		log.Info("JWT authentication middleware applied to /api/v1 group.")
	}
	api.Use(middleware.LoadViewer(repos.Users))

	postHandler := handlers.NewPostHandler(repos.Posts, repos.Users, repos.Likes, repos.SavedPosts, deps.LikersCache, deps.Limits, log)
	postHandler.RegisterPostRoutes(api)

	likeHandler := handlers.NewLikeHandler(repos.Likes, repos.Posts, repos.Notifications, deps.LikersCache, log)
	likeHandler.RegisterLikeRoutes(api)

	savedPostHandler := handlers.NewSavedPostHandler(repos.SavedPosts, repos.Posts)
	savedPostHandler.RegisterSavedPostRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(repos.Notifications, repos.Users)
	notificationHandler.RegisterNotificationRoutes(api)

	admin := api.Group("/admin", middleware.RequireAdmin())
	adminHandler := handlers.NewAdminHandler(repos.Users, log)
	adminHandler.RegisterAdminRoutes(admin)

	log.Info("All routes configured.")
}
