// Package api is the ops sidecar of the bot: a small localhost HTTP
// surface for health checks and queue statistics.
package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fetchdl/fetchdl/internal/api/handler"
	mw "github.com/fetchdl/fetchdl/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(healthHandler *handler.HealthHandler, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/stats", healthHandler.Stats)

	return r
}
