// Package main provides the Pathio Guide API server entrypoint.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/triptech-ai/pathio-guide/internal/cache"
	"github.com/triptech-ai/pathio-guide/internal/config"
	"github.com/triptech-ai/pathio-guide/internal/intent"
	"github.com/triptech-ai/pathio-guide/internal/llm"
	"github.com/triptech-ai/pathio-guide/internal/observability"
	"github.com/triptech-ai/pathio-guide/internal/retrieval"
	"github.com/triptech-ai/pathio-guide/internal/storage"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if len(os.Args) > 2 && os.Args[1] == "--config" {
		cfgPath = os.Args[2]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})

	logger.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.Driver).
		Str("cache", cfg.Cache.Driver).
		Str("model", cfg.Model.Name).
		Msg("Starting Pathio Guide API")

	db, err := storage.Open(cfg.Database.Driver, cfg.DatabaseDSN(), storage.OpenOptions{
		MaxOpenConns:    cfg.Database.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Database.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open place store")
	}
	defer db.Close()

	var cacheClient cache.Client
	if cfg.Cache.Driver == "redis" {
		cacheClient, err = cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
	} else {
		cacheClient = cache.NewMemoryClient(cfg.Cache.MaxEntries)
	}
	defer cacheClient.Close()

	// The model is optional: without an API key the guide still searches,
	// it just answers in fixed phrasing.
	var model llm.Model
	if cfg.Model.APIKey != "" {
		gemini, err := llm.NewGeminiClient(context.Background(), llm.Config{
			APIKey:  cfg.Model.APIKey,
			Model:   cfg.Model.Name,
			Timeout: cfg.Model.Timeout,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Model client unavailable, continuing without it")
		} else {
			model = gemini
			defer gemini.Close()
		}
	} else {
		logger.Warn().Msg("No model API key configured, replies will use fixed phrasing")
	}

	engine := retrieval.NewEngine(
		storage.NewPlaceRepository(db),
		intent.NewClassifier(model, logger),
		model,
		cacheClient,
		cfg.Retrieval,
		logger,
	)

	router := NewRouter(logger, cfg, engine, db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error().Err(err).Msg("Server error")
	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
		if err := srv.Close(); err != nil {
			logger.Error().Err(err).Msg("Forced shutdown failed")
		}
	}

	logger.Info().Msg("Server stopped")
}
