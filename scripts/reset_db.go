package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/nexafin/sve/internal/logger"
	"github.com/nexafin/sve/internal/state"
)

func main() {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Initialize(logLevel)
	log.Info().Msg("Starting database reset script...")

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found or error loading .env file. Relying on OS environment variables.")
	}

	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPort := 5432
	if portStr := os.Getenv("DB_PORT"); portStr != "" {
		if parsed, err := strconv.Atoi(portStr); err == nil {
			dbPort = parsed
		}
	}
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		log.Fatal().Msg("DB_USER environment variable not set.")
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		log.Fatal().Msg("DB_NAME environment variable not set.")
	}
	dbSSLMode := os.Getenv("DB_SSLMODE")
	if dbSSLMode == "" {
		dbSSLMode = "disable"
	}

	dbCfg := state.DBConfig{
		Host: dbHost, Port: dbPort,
		User: dbUser, Password: os.Getenv("DB_PASSWORD"),
		DBName: dbName, SSLMode: dbSSLMode,
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()

	log.Warn().Msg("Dropping all settlement tables...")
	if err := state.DropSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to drop schema")
	}
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to recreate schema")
	}
	log.Info().Msg("Database reset complete.")
}
