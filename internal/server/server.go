// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the entire dependency chain —
// sqlite.DB → repositories → services → handlers → routes — is wired here,
// in one place, rather than scattered across the codebase. main.go only
// reads config and calls New/Start.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/sakif/movielist/internal/auth"
	"github.com/sakif/movielist/internal/handler"
	"github.com/sakif/movielist/internal/middleware"
	"github.com/sakif/movielist/internal/model"
	sqliteRepo "github.com/sakif/movielist/internal/repository/sqlite"
	"github.com/sakif/movielist/internal/service"
	"github.com/sakif/movielist/internal/tmdb"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port        int
	DBPath      string
	JWTSecret   string
	TmdbAPIKey  string
	TmdbBaseURL string
}

// Server owns the router and the resources that must be released on
// shutdown (the database connection).
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with the full dependency graph wired.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	// Global middleware, in order: request IDs for tracing, real client IPs
	// behind proxies, panic recovery, then our structured request log.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()
	validate := validator.New()

	// s.db's Movies/Users/Follows views implement the three repository
	// interfaces; services receive the interfaces, never the concrete types.
	movieService := service.NewMovieService(s.db.Movies(), s.db.Users(), s.logger)
	socialService := service.NewSocialService(s.db.Users(), s.db.Follows(), s.logger)
	leaderboardService := service.NewLeaderboardService(s.db.Users(), service.DefaultWeights, s.logger)
	userService := service.NewUserService(s.db.Users(), s.db.Movies(), s.db.Follows(), s.logger)
	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)

	// Likes/comments live in a separate subsystem; it subscribes to movie
	// deletions to drop orphaned rows. Until it registers, the log line is
	// the audit trail.
	movieService.OnDelete(func(ctx context.Context, movie *model.Movie) {
		s.logger.Info("movie deletion event",
			slog.String("movieID", movie.ID),
			slog.String("ownerID", movie.OwnerID),
		)
	})

	tmdbClient := tmdb.NewClient(s.config.TmdbAPIKey, s.config.TmdbBaseURL, s.logger)

	authHandler := handler.NewAuthHandler(authService, validate, s.logger)
	movieHandler := handler.NewMovieHandler(movieService, s.db.Users(), validate, s.logger)
	userHandler := handler.NewUserHandler(userService, socialService, leaderboardService, s.db.Users(), validate, s.logger)
	tmdbHandler := handler.NewTmdbHandler(tmdbClient, s.logger)

	requireAuth := auth.RequireAuth(tokens)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Route("/movies", func(r chi.Router) {
			// Public reads first; "wishlist"/"watched" must be registered
			// before "{id}" routes so chi matches the literal segments.
			r.Get("/user/{userId}", movieHandler.HandleUserMovies)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/wishlist", movieHandler.HandleWishlist)
				r.Get("/watched", movieHandler.HandleWatched)
				r.Post("/", movieHandler.HandleAdd)
				r.Put("/{id}", movieHandler.HandleUpdate)
				r.Put("/{id}/mark-watched", movieHandler.HandleMarkWatched)
				r.Delete("/{id}", movieHandler.HandleDelete)
			})

			r.Get("/{id}", movieHandler.HandleGetByID)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/leaderboard", userHandler.HandleLeaderboard)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", userHandler.HandleMe)
				r.Put("/me", userHandler.HandleUpdateMe)
				r.Post("/follow/{username}", userHandler.HandleFollow)
				r.Post("/unfollow/{username}", userHandler.HandleUnfollow)
				r.Get("/followers", userHandler.HandleFollowers)
				r.Get("/following", userHandler.HandleFollowing)
			})

			r.Get("/{username}", userHandler.HandleProfile)
		})

		r.Route("/tmdb", func(r chi.Router) {
			r.Get("/search", tmdbHandler.HandleSearch)
			r.Get("/popular", tmdbHandler.HandlePopular)
			r.Get("/top-rated", tmdbHandler.HandleTopRated)
			r.Get("/upcoming", tmdbHandler.HandleUpcoming)
			r.Get("/movie/{id}", tmdbHandler.HandleDetails)
			r.Get("/movie/{id}/recommendations", tmdbHandler.HandleRecommendations)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s, and
// close the database (flushes the WAL, releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
