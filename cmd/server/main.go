package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/fr-yash/CoBuilderr/internal/ai"
	"github.com/fr-yash/CoBuilderr/internal/api"
	"github.com/fr-yash/CoBuilderr/internal/auth"
	"github.com/fr-yash/CoBuilderr/internal/config"
	"github.com/fr-yash/CoBuilderr/internal/handlers"
	"github.com/fr-yash/CoBuilderr/internal/relay"
	"github.com/fr-yash/CoBuilderr/internal/store"
	"github.com/fr-yash/CoBuilderr/internal/ws"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the data store: PostgreSQL when configured, SQLite otherwise
	var db store.DataStore
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		db = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		db = sqliteStore
		logger.Info().Msg("using SQLite store")
	}
	defer db.Close()

	// Initialize Redis (token blacklist + message cache); optional in dev
	var redisStore *store.RedisStore
	if cfg.RedisURL != "" {
		var err error
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		logger.Info().Msg("connected to Redis")
	} else {
		logger.Warn().Msg("no REDIS_URL, token revocation and message history disabled")
	}

	// Initialize the generation backend
	completer, err := ai.NewGeminiCompleter(ctx, cfg.GoogleAPIKey, cfg.GenModel)
	if err != nil {
		logger.Fatal().Err(err).Msg("gemini client init failed")
	}
	aiService := ai.NewService(completer, cfg.GenTimeout, logger)

	// Wire the relay core
	verifier := auth.NewVerifier(cfg.JWTSecret, redisStore)
	registry := relay.NewRegistry(logger)

	// Assign only when present so a nil *RedisStore never becomes a
	// non-nil cache interface.
	var cache relay.MessageCache
	if redisStore != nil {
		cache = redisStore
	}
	rl := relay.New(ctx, registry, aiService, cache, logger)
	gateway := ws.NewGateway(registry, rl, verifier, db, cfg.FrontendURLs, logger)

	// Create router
	h := handlers.NewHandler(db, redisStore, verifier, aiService)
	router := api.NewRouter(logger, h, gateway, verifier, cfg.FrontendURLs)

	// Create server
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("model", cfg.GenModel).
			Msg("starting CoBuilder server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	// Let in-flight generation work finish before tearing down stores
	rl.Wait()

	logger.Info().Msg("server stopped")
}
