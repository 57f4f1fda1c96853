package backend

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smallwat3r/stealthpad/internal/domain"
	"github.com/smallwat3r/stealthpad/internal/utility"
)

type Handler struct {
	repo SessionRepository
	ttl  time.Duration
	log  zerolog.Logger
}

func NewHandler(repo SessionRepository, ttl time.Duration, log zerolog.Logger) *Handler {
	if ttl <= 0 {
		ttl = domain.SessionTTL
	}
	return &Handler{repo: repo, ttl: ttl, log: log}
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// HandleLogin issues a fresh token pair.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	s := Session{
		ID:           uuid.NewString(),
		AuthToken:    uuid.NewString(),
		RefreshToken: uuid.NewString(),
	}
	if err := h.repo.Create(r.Context(), s, h.ttl); err != nil {
		h.log.Error().Err(err).Msg("create session")
		utility.HttpError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	utility.WriteJSON(w, http.StatusCreated, domain.LoginRes{
		AuthToken:    s.AuthToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    int64(h.ttl / time.Second),
	})
}

// HandleLogout revokes the bearer's session. It answers 204 whatever
// happened, so a caller learns nothing from the response.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if token := utility.BearerToken(r); token != "" {
		err := h.repo.Revoke(r.Context(), token)
		switch {
		case err == nil:
			h.log.Info().Msg("session revoked")
		case errors.Is(err, ErrSessionNotFound):
		default:
			h.log.Error().Err(err).Msg("revoke session")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSession reports whether the bearer's session is still live.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	token := utility.BearerToken(r)
	if token == "" {
		utility.HttpError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	if _, err := h.repo.Lookup(r.Context(), token); err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			h.log.Error().Err(err).Msg("lookup session")
		}
		utility.HttpError(w, http.StatusUnauthorized, "session expired")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", h.HandleHealth)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
	r.Get("/session", h.HandleSession)

	return r
}
