package main

import (
	"context"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vidora/backend/internal/router"
	"github.com/vidora/backend/pkg/config"
	"github.com/vidora/backend/pkg/firebase"
	"github.com/vidora/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Configure logging
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.CloseDB()

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Firebase")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	if _, err := router.SetupRoutes(e, db.Postgres, db.Mongo, firebaseApp.MessagingClient, cfg.MongoDatabase, cfg.AdminUserID); err != nil {
		log.Fatal().Err(err).Msg("failed to set up routes")
	}

	// Start server
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
