package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/social-hub/backend/internal/repositories"
	"github.com/anonto42/social-hub/backend/internal/router"
	"github.com/anonto42/social-hub/backend/internal/services"
	"github.com/anonto42/social-hub/backend/internal/validators"
	"github.com/anonto42/social-hub/backend/pkg/config"
	"github.com/anonto42/social-hub/backend/pkg/firebase"
	"github.com/anonto42/social-hub/backend/pkg/logger"
	"github.com/anonto42/social-hub/backend/pkg/realtime"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	build := logger.New().WithLevel(cfg.LogLevel)
	if cfg.LogFile != "" {
		build = build.FromPath(cfg.LogFile)
	}
	logData, err := build.Make()
	if err != nil {
		panic(err)
	}
	defer logData.Close()
	log := logData.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize databases")
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	store, err := openStore(ctx, cfg, db)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to prepare store")
	}

	// Initialize Firebase
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Firebase")
	}

	hub := realtime.NewHub(cfg.ObserverBuffer, log)
	validator := validators.NewValidator()
	service := services.NewRelationService(store, hub, validator, log)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator

	// Setup global middleware
	config.SetupMiddleware(e, log)

	// Setup routes and dependencies
	deps := router.Deps{Service: service, Hub: hub, Logger: log}
	if firebaseApp != nil {
		deps.Verifier = firebaseApp.AuthClient
	}
	router.SetupRoutes(e, deps)

	// Start server
	go func() {
		log.Info().Str("port", cfg.Port).Str("driver", cfg.StoreDriver).Msg("Server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func openStore(ctx context.Context, cfg *config.Config, db *config.DB) (*repositories.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return repositories.NewMongoStore(ctx, db.Mongo.Database(cfg.MongoDatabase))
	case config.DriverPostgres:
		return repositories.NewPostgresStore(db.Postgres)
	}
	return repositories.NewMemoryStore(), nil
}
