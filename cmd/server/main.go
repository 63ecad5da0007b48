package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/nithinag10/gatherly/internal/api"
	"github.com/nithinag10/gatherly/internal/config"
	"github.com/nithinag10/gatherly/internal/handlers"
	"github.com/nithinag10/gatherly/internal/llm"
	"github.com/nithinag10/gatherly/internal/store"
	"github.com/nithinag10/gatherly/internal/topic"
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

	ctx := context.Background()

	// Initialize the database store: PostgreSQL when configured, SQLite
	// for development otherwise.
	var db store.ChatStore
	if cfg.DatabaseURL != "" {
		logger.Info().Msg("running database migrations...")
		if err := store.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Msg("migrations completed")

		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL, cfg.SystemSenderID)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		db = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath, cfg.SystemSenderID)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		db = sqliteStore
		logger.Info().Str("path", cfg.SQLitePath).Msg("using SQLite")
	}
	defer db.Close()

	// Initialize Redis store (optional)
	var redisStore *store.RedisStore
	if cfg.RedisURL != "" {
		var err error
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Initialize the language model client and the topic services
	client, err := llm.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("language model client failed")
	}
	logger.Info().
		Str("provider", cfg.LLMProvider).
		Str("model", cfg.LLMModel).
		Msg("language model configured")

	validator := topic.NewValidator(db, client, cfg.ContextWindow, logger)
	summarizer := topic.NewSummarizer(db, client, logger)
	trigger := topic.NewTrigger(db, validator, cfg.SystemSenderID, cfg.ValidationInterval, logger)
	logger.Info().
		Int("validation_interval", trigger.Interval()).
		Int("context_window", cfg.ContextWindow).
		Msg("drift detection configured")

	// Create handler and router
	h := handlers.NewHandler(db, redisStore, validator, summarizer, trigger, logger)
	router := api.NewRouter(logger, cfg, h, redisStore)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // model-backed endpoints can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting Gatherly server")

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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
