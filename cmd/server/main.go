// Package main is the entry point for the movie list server.
//
// main stays minimal: read configuration, create the logger, start the
// server. All logic lives in internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sakif/movielist/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// .env is a development convenience; in production the environment is
	// set by the deployment. A missing file is not an error.
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded configuration from .env")
	}

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/movielist.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// JWT_SECRET must be a long random string: JWT_SECRET=$(openssl rand -hex 32)
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	tmdbBaseURL := os.Getenv("TMDB_BASE_URL")
	if tmdbBaseURL == "" {
		tmdbBaseURL = "https://api.themoviedb.org/3"
	}
	tmdbAPIKey := os.Getenv("TMDB_API_KEY")
	if tmdbAPIKey == "" {
		logger.Warn("TMDB_API_KEY not set — /api/tmdb endpoints will fail")
	}

	cfg := server.Config{
		Port:        port,
		DBPath:      dbPath,
		JWTSecret:   jwtSecret,
		TmdbAPIKey:  tmdbAPIKey,
		TmdbBaseURL: tmdbBaseURL,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
