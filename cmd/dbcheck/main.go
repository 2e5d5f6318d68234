// Command dbcheck connects to the configured store, prepares its schema and
// reports whether it is reachable. It exits non-zero on failure.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anonto42/social-hub/backend/internal/repositories"
	"github.com/anonto42/social-hub/backend/pkg/config"
	"github.com/anonto42/social-hub/backend/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()
	logData, err := logger.New().WithLevel(cfg.LogLevel).Make()
	if err != nil {
		panic(err)
	}

	if err := run(cfg, logData.Logger); err != nil {
		logData.Logger.Error().Err(err).Str("driver", cfg.StoreDriver).Msg("store check failed")
		os.Exit(1)
	}
	logData.Logger.Info().Str("driver", cfg.StoreDriver).Msg("store ok")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := config.InitDB(cfg, log)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	switch cfg.StoreDriver {
	case config.DriverMongo:
		_, err = repositories.NewMongoStore(ctx, db.Mongo.Database(cfg.MongoDatabase))
	case config.DriverPostgres:
		_, err = repositories.NewPostgresStore(db.Postgres)
	}
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}
