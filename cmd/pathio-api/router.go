// Package main provides the API router setup.
package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/triptech-ai/pathio-guide/cmd/pathio-api/handlers"
	"github.com/triptech-ai/pathio-guide/cmd/pathio-api/middleware"
	"github.com/triptech-ai/pathio-guide/internal/config"
	"github.com/triptech-ai/pathio-guide/internal/observability"
	"github.com/triptech-ai/pathio-guide/internal/retrieval"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, engine *retrieval.Engine, db *sql.DB) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"pathio-guide"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			logger.Warn().Err(err).Msg("Readiness check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.Write([]byte(`{"status":"ready"}`))
	})

	chatHandler := handlers.NewChatHandler(logger, engine, retrieval.NewSessionStore())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/chat", chatHandler.Chat)
		r.Delete("/sessions/{sessionID}", chatHandler.EndSession)
	})

	return r
}
