package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/smallwat3r/stealthpad/internal/domain"
)

// RouterConfig carries the optional middleware settings.
type RouterConfig struct {
	RequireHTTPS bool
	RateLimiter  *RateLimiterMiddleware
}

// NewRouter mounts the disguise API. The request timeout stays well above
// any timing window so a transition is never cut off mid-wipe.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(SecurityHeaders(SecurityHeadersConfig{RequireHTTPS: cfg.RequireHTTPS}))
	r.Use(ContentLengthValidator(domain.MaxRequestBodySize))

	r.Get("/health", h.HandleHealth)
	r.Get("/decoy", h.HandleDecoy)
	r.Post("/lock", h.HandleLock)

	r.Group(func(r chi.Router) {
		r.Use(cfg.RateLimiter.Handler)
		r.Post("/keys", h.HandleKey)
	})

	r.Route("/session", func(r chi.Router) {
		r.Post("/", h.HandleLogin)
		r.Delete("/", h.HandleLogout)
	})

	return r
}
