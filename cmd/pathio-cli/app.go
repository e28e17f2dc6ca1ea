// Package main provides shared wiring for CLI commands.
package main

import (
	"context"

	"github.com/triptech-ai/pathio-guide/internal/cache"
	"github.com/triptech-ai/pathio-guide/internal/intent"
	"github.com/triptech-ai/pathio-guide/internal/llm"
	"github.com/triptech-ai/pathio-guide/internal/retrieval"
	"github.com/triptech-ai/pathio-guide/internal/storage"
)

// buildEngine wires a retrieval engine from the loaded configuration. The
// returned cleanup closes every opened resource and is safe to defer.
func buildEngine(ctx context.Context) (*retrieval.Engine, func(), error) {
	db, err := storage.Open(cfg.Database.Driver, cfg.DatabaseDSN(), storage.OpenOptions{
		MaxOpenConns:    cfg.Database.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Database.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}

	var model llm.Model
	var closeModel func()
	if cfg.Model.APIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, llm.Config{
			APIKey:  cfg.Model.APIKey,
			Model:   cfg.Model.Name,
			Timeout: cfg.Model.Timeout,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Model client unavailable, continuing without it")
		} else {
			model = gemini
			closeModel = func() { gemini.Close() }
		}
	}

	memCache := cache.NewMemoryClient(cfg.Cache.MaxEntries)

	engine := retrieval.NewEngine(
		storage.NewPlaceRepository(db),
		intent.NewClassifier(model, logger),
		model,
		memCache,
		cfg.Retrieval,
		logger,
	)

	cleanup := func() {
		if closeModel != nil {
			closeModel()
		}
		memCache.Close()
		db.Close()
	}
	return engine, cleanup, nil
}
