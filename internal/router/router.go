package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/socialape/screams-backend/internal/handlers"
	"github.com/socialape/screams-backend/internal/middleware"
	"github.com/socialape/screams-backend/internal/notifier"
	"github.com/socialape/screams-backend/internal/observability"
	"github.com/socialape/screams-backend/internal/repositories"
	"github.com/socialape/screams-backend/pkg/firebase"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, logger *slog.Logger) {
	e.Use(observability.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
}

// SetupRoutes configures all application routes and injects dependencies.
// feedCache may be nil when Redis is unavailable.
func SetupRoutes(e *echo.Echo, db *mongo.Database, fb *firebase.App, feedCache handlers.FeedCache, logger *slog.Logger) {
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(logger)

	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	screamRepo := repositories.NewMongoScreamRepository(db)
	commentRepo := repositories.NewMongoCommentRepository(db)
	likeRepo := repositories.NewMongoLikeRepository(db)
	notificationRepo := repositories.NewMongoNotificationRepository(db)

	n := notifier.New(screamRepo, notificationRepo, logger)

	// --- Unprotected routes ---
	authGroup := e.Group("/auth")
	authHandler := handlers.NewAuthHandler(userRepo, fb, fb.DefaultImageURL(), logger)
	authHandler.RegisterAuthRoutes(authGroup)

	public := e.Group("")
	screamHandler := handlers.NewScreamHandler(screamRepo, commentRepo, likeRepo, n, feedCache, logger)
	screamHandler.RegisterPublicRoutes(public)

	userHandler := handlers.NewUserHandler(userRepo, screamRepo, likeRepo, notificationRepo, fb, logger)
	userHandler.RegisterPublicRoutes(public)

	// --- Protected routes (bearer token required) ---
	protected := e.Group("", middleware.Authorization(fb, userRepo))
	screamHandler.RegisterProtectedRoutes(protected)
	userHandler.RegisterProtectedRoutes(protected)

	logger.Info("routes configured")
}
