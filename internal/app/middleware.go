package app

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/smallwat3r/stealthpad/internal/utility"
)

// ContentLengthValidator validates Content-Length header for requests with bodies.
// It rejects requests without Content-Length or with excessive Content-Length.
func ContentLengthValidator(maxSize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut ||
				r.Method == http.MethodPatch {
				// r.ContentLength is -1 if not specified or chunked encoding
				if r.ContentLength < 0 {
					utility.HttpError(w, http.StatusLengthRequired,
						"Content-Length header is required")
					return
				}
				if r.ContentLength > maxSize {
					utility.HttpError(w, http.StatusRequestEntityTooLarge,
						"Content-Length exceeds maximum allowed size")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersConfig holds configuration for security headers middleware.
type SecurityHeadersConfig struct {
	RequireHTTPS bool
}

// SecurityHeaders adds security-related HTTP headers to responses. Nothing
// the disguise serves may be cached, since a cached genuine screen would
// outlive a duress wipe.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip redirect for /health endpoint to allow internal health checks
			if cfg.RequireHTTPS && r.URL.Path != "/health" {
				isHTTPS := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
				if !isHTTPS {
					target := "https://" + r.Host + r.URL.RequestURI()
					http.Redirect(w, r, target, http.StatusMovedPermanently)
					return
				}
				w.Header().Set("Strict-Transport-Security",
					"max-age=31536000; includeSubDomains")
			}

			w.Header().Set("Cache-Control", "no-store")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("Content-Security-Policy",
				"default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'")
			w.Header().Set("Permissions-Policy",
				"geolocation=(), microphone=(), camera=(), payment=(), usb=()")
			w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	KeyLimit int           // max keypad presses per window
	Window   time.Duration // time window for rate limiting
}

// DefaultRateLimitConfig allows fast typing but not scripted code guessing.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		KeyLimit: 240,
		Window:   time.Minute,
	}
}

// RateLimiterMiddleware uses Redis to count keypad presses per client.
type RateLimiterMiddleware struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewRateLimiter creates a new Redis-based rate limiter middleware.
func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		rdb:    rdb,
		limit:  cfg.KeyLimit,
		window: cfg.Window,
	}
}

// Handler returns the HTTP middleware handler.
func (m *RateLimiterMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip rate limiting if Redis is not configured (e.g., in tests)
		if m == nil || m.rdb == nil || r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("ratelimit:keys:%s", clientIP(r))

		// INCR and EXPIRE in one transaction so a crash between them
		// cannot leave a counter without TTL.
		pipe := m.rdb.TxPipeline()
		incr := pipe.Incr(r.Context(), key)
		pipe.Expire(r.Context(), key, m.window)
		if _, err := pipe.Exec(r.Context()); err != nil {
			log.Warn().Err(err).Msg("rate limit redis error")
			next.ServeHTTP(w, r)
			return
		}

		if int(incr.Val()) > m.limit {
			utility.HttpError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	ip := r.RemoteAddr
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		ip = realIP
	} else if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
		if idx := strings.Index(forwardedFor, ","); idx != -1 {
			ip = strings.TrimSpace(forwardedFor[:idx])
		} else {
			ip = strings.TrimSpace(forwardedFor)
		}
	}
	return ip
}
