package main

import (
	"flag"
	"os"

	"github.com/hanapbuhay/backend/internal/database"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Migrations are embedded in the database package, so this binary needs no
// access to the source tree.
func main() {
	// Configure zerolog for pretty console output
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		command     string
		databaseURL string
	)

	flag.StringVar(&command, "command", "up", "Migration command: up, down, version")
	flag.StringVar(&databaseURL, "database", "", "Database URL (overrides DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		log.Fatal().Msg("DATABASE_URL environment variable or -database flag is required")
	}

	log.Info().
		Str("command", command).
		Msg("Starting migration")

	switch command {
	case "up":
		if err := database.RunMigrations(databaseURL); err != nil {
			log.Fatal().Err(err).Msg("Migration failed")
		}
	case "down":
		if err := database.RollbackMigration(databaseURL); err != nil {
			log.Fatal().Err(err).Msg("Rollback failed")
		}
	case "version":
		version, dirty, err := database.MigrationVersion(databaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to get version")
		}
		if version == 0 {
			log.Info().Msg("No migrations have been applied yet")
			return
		}
		log.Info().
			Uint("version", version).
			Bool("dirty", dirty).
			Msg("Current migration version")
		return
	default:
		log.Fatal().Str("command", command).Msg("Unknown command")
	}

	log.Info().Msg("Migration completed successfully")
}
