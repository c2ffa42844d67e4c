package main

import (
	"context"
	"flag"
	"os"

	"github.com/hanapbuhay/backend/internal/auth"
	"github.com/hanapbuhay/backend/internal/config"
	"github.com/hanapbuhay/backend/internal/database"
	"github.com/hanapbuhay/backend/internal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Seeds the administrator account. Safe to run repeatedly: an existing
// account with the same email is left untouched.
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var (
		email    string
		password string
	)
	flag.StringVar(&email, "email", "admin@hanapbuhay.com", "Admin account email")
	flag.StringVar(&password, "password", "Admin@123", "Admin account password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	ctx := context.Background()
	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO accounts (email, password_hash, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
	`, email, passwordHash, models.RoleAdmin)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin account")
	}

	if tag.RowsAffected() == 0 {
		log.Info().Str("email", email).Msg("Admin account already exists")
		return
	}

	log.Info().Str("email", email).Msg("Admin account created")
}
