package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"

	"github.com/socialape/screams-backend/internal/cache"
	"github.com/socialape/screams-backend/internal/handlers"
	"github.com/socialape/screams-backend/internal/observability"
	"github.com/socialape/screams-backend/internal/router"
	"github.com/socialape/screams-backend/pkg/config"
	"github.com/socialape/screams-backend/pkg/firebase"
	"github.com/socialape/screams-backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := observability.NewLogger(cfg.Env)

	// Initialize document store connection
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket, cfg.FirebaseWebAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Feed cache is optional; the feed falls back to the store without it.
	var feedCache handlers.FeedCache
	if redisCache, err := cache.Connect(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, feed cache disabled", "error", err)
	} else {
		feedCache = redisCache
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e, logger)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Mongo.Database(cfg.MongoDatabase), firebaseApp, feedCache, logger)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
