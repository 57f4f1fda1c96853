// Package gate decides what a keypad sequence unlocks and runs the matching
// transition: genuine app on the stealth code, wipe and decoy on duress.
package gate

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/smallwat3r/stealthpad/internal/config"
	"github.com/smallwat3r/stealthpad/internal/domain"
	"github.com/smallwat3r/stealthpad/internal/keypad"
	"github.com/smallwat3r/stealthpad/internal/notify"
	"github.com/smallwat3r/stealthpad/internal/timing"
	"github.com/smallwat3r/stealthpad/internal/vault"
)

// Trigger is a terminal action run after a code match.
type Trigger interface {
	Trigger(ctx context.Context)
}

// Gate feeds tokens to the matcher and runs the controller a match selects.
// Feeds are serialized: the gate is the single actor for one input stream.
type Gate struct {
	mu      sync.Mutex
	matcher *keypad.Matcher
	unlock  Trigger
	duress  Trigger
}

func New(matcher *keypad.Matcher, unlock, duress Trigger) *Gate {
	return &Gate{matcher: matcher, unlock: unlock, duress: duress}
}

// Feed consumes one token. On a match it blocks until the transition has
// been signalled to the navigator.
func (g *Gate) Feed(ctx context.Context, tok domain.Token) domain.MatchResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	res := g.matcher.Feed(tok)
	switch res {
	case domain.MatchStealth:
		g.unlock.Trigger(ctx)
	case domain.MatchDuress:
		g.duress.Trigger(ctx)
	}
	return res
}

// Close stops the matcher's idle timer.
func (g *Gate) Close() {
	g.matcher.Stop()
}

// Deps are the collaborators Build wires into a Gate.
type Deps struct {
	Store     vault.Store
	Notifier  notify.Notifier
	Navigator Navigator
	Log       zerolog.Logger
	// Sampler overrides the uniform delay sampler, mainly for tests.
	Sampler timing.Sampler
}

// Build assembles matcher, equalizer and both controllers from cfg. Both
// controllers share one equalizer so their delays come from one window.
func Build(cfg config.UnlockConfig, deps Deps) (*Gate, error) {
	if deps.Navigator == nil {
		return nil, errors.New("gate: navigator is required")
	}
	var opts []timing.Option
	if deps.Sampler != nil {
		opts = append(opts, timing.WithSampler(deps.Sampler))
	}
	eq, err := timing.NewEqualizer(cfg.Window, opts...)
	if err != nil {
		return nil, err
	}
	matcher := keypad.NewMatcher(cfg.StealthCode, cfg.DuressCode, cfg.IdleReset)
	unlock := NewUnlockController(eq, deps.Navigator, deps.Log)
	duress := NewDuressController(deps.Store, cfg.CredentialKeys, deps.Notifier, eq, deps.Navigator, deps.Log)
	return New(matcher, unlock, duress), nil
}
