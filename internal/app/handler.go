package app

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/smallwat3r/stealthpad/internal/decoy"
	"github.com/smallwat3r/stealthpad/internal/domain"
	"github.com/smallwat3r/stealthpad/internal/keypad"
	"github.com/smallwat3r/stealthpad/internal/utility"
	"github.com/smallwat3r/stealthpad/internal/vault"
)

// Gate is the part of gate.Gate the handler needs.
type Gate interface {
	Feed(ctx context.Context, tok domain.Token) domain.MatchResult
}

// Screen reports and resets the current navigation target.
type Screen interface {
	Current() domain.Destination
	Lock()
}

type Handler struct {
	// keyMu orders calculator presses and gate feeds as one stream.
	keyMu  sync.Mutex
	gate   Gate
	calc   *keypad.Calculator
	screen Screen
	store  vault.Store
	decoy  decoy.Renderer
	log    zerolog.Logger
}

func NewHandler(g Gate, screen Screen, store vault.Store, renderer decoy.Renderer, log zerolog.Logger) *Handler {
	return &Handler{
		gate:   g,
		calc:   keypad.NewCalculator(),
		screen: screen,
		store:  store,
		decoy:  renderer,
		log:    log,
	}
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// HandleKey feeds one keypad token. The calculator always updates first, so
// the display is the same whether or not the token completed a code.
func (h *Handler) HandleKey(w http.ResponseWriter, r *http.Request) {
	var req domain.KeyReq
	if err := utility.DecodeJSON(r, domain.MaxRequestBodySize, &req); err != nil {
		utility.HttpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tok := domain.Token(strings.TrimSpace(req.Token))
	if !tok.Valid() {
		utility.HttpError(w, http.StatusBadRequest, "invalid token")
		return
	}

	h.keyMu.Lock()
	display := h.calc.Press(tok)
	if res := h.gate.Feed(r.Context(), tok); res != domain.MatchNone {
		h.calc.Reset()
	}
	h.keyMu.Unlock()

	utility.WriteJSON(w, http.StatusOK, domain.KeyRes{
		Display: display,
		Screen:  h.screen.Current().String(),
	})
}

// HandleDecoy renders the decoy page. It is reachable at any time.
func (h *Handler) HandleDecoy(w http.ResponseWriter, r *http.Request) {
	utility.WriteJSON(w, http.StatusOK, h.decoy.Render())
}

// HandleLock returns the UI to the calculator.
func (h *Handler) HandleLock(w http.ResponseWriter, r *http.Request) {
	h.screen.Lock()
	h.keyMu.Lock()
	h.calc.Reset()
	h.keyMu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// HandleLogin stores the session tokens. Before unlock the route does not
// exist as far as the client can tell.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.unlocked() {
		http.NotFound(w, r)
		return
	}
	var req domain.SessionReq
	if err := utility.DecodeJSON(r, domain.MaxRequestBodySize, &req); err != nil {
		utility.HttpError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AuthToken == "" || req.RefreshToken == "" {
		utility.HttpError(w, http.StatusBadRequest, "auth_token and refresh_token are required")
		return
	}
	if err := h.store.Set(r.Context(), domain.AuthTokenKey, req.AuthToken); err != nil {
		h.log.Error().Err(err).Msg("store auth token")
		utility.HttpError(w, http.StatusInternalServerError, "failed to store session")
		return
	}
	if err := h.store.Set(r.Context(), domain.RefreshTokenKey, req.RefreshToken); err != nil {
		h.log.Error().Err(err).Msg("store refresh token")
		_ = h.store.Delete(r.Context(), domain.AuthTokenKey)
		utility.HttpError(w, http.StatusInternalServerError, "failed to store session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleLogout removes the session tokens one by one.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if !h.unlocked() {
		http.NotFound(w, r)
		return
	}
	failed := false
	for _, key := range []string{domain.AuthTokenKey, domain.RefreshTokenKey} {
		if err := h.store.Delete(r.Context(), key); err != nil {
			h.log.Error().Err(err).Str("key", key).Msg("delete credential")
			failed = true
		}
	}
	if failed {
		utility.HttpError(w, http.StatusInternalServerError, "failed to clear session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) unlocked() bool {
	return h.screen.Current() == domain.EnterGenuineApp
}
