package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/heshamdawsha976/sen2/internal/ratelimit"
)

// NewRouter mounts the order API under /api behind the edge checks.
func NewRouter(orderHandler *OrderHandler, limiter *ratelimit.Limiter) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(RequestLogger)
	router.Use(middleware.Recoverer)
	router.Use(SecurityHeaders)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	router.Route("/api", func(api chi.Router) {
		api.Use(RateLimit(limiter))
		api.Use(SameOrigin)
		orderHandler.RegisterRoutes(api)
	})

	return router
}
