package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/securepulses/gatekeeper/internal/handlers"
	"github.com/securepulses/gatekeeper/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	contactHandler *handlers.ContactHandler,
	perimeterLimit middleware.PerimeterRateLimitConfig,
) {
	// The perimeter limiter is the outer flood shield; the pipeline's own
	// sliding-window limiter applies the per-client submission policy.
	router.With(middleware.RateLimitByIP(perimeterLimit)).
		Post("/api/contact", contactHandler.Submit)
}
