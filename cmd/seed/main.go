// cmd/seed/main.go

// Command seed creates the database schema and loads sample data. It is
// safe to run repeatedly.
package main

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"booklovers/internal/config"
	"booklovers/internal/seed"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal().Err(err).Msg("database unreachable")
	}

	if err := seed.Run(ctx, db, logger); err != nil {
		logger.Fatal().Err(err).Msg("seeding failed")
	}
	logger.Info().Msg("seeding complete")
}
