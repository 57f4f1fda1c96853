package gate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/smallwat3r/stealthpad/internal/domain"
	"github.com/smallwat3r/stealthpad/internal/notify"
	"github.com/smallwat3r/stealthpad/internal/timing"
	"github.com/smallwat3r/stealthpad/internal/vault"
)

// DuressController wipes local credentials, tells the backend to log out,
// and lands on the decoy. Nothing it does can fail visibly.
type DuressController struct {
	store     vault.Store
	keys      []string
	notifier  notify.Notifier
	equalizer *timing.Equalizer
	nav       Navigator
	log       zerolog.Logger
}

// NewDuressController wires a controller. keys are wiped in addition to
// whatever the store itself lists.
func NewDuressController(store vault.Store, keys []string, n notify.Notifier,
	eq *timing.Equalizer, nav Navigator, log zerolog.Logger) *DuressController {
	if n == nil {
		n = notify.Nop{}
	}
	return &DuressController{
		store:     store,
		keys:      append([]string(nil), keys...),
		notifier:  n,
		equalizer: eq,
		nav:       orNop(nav),
		log:       log,
	}
}

// Trigger runs the wipe to completion. Caller cancellation is ignored: a
// half-finished wipe is worse than a late one.
func (c *DuressController) Trigger(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	var outcome domain.WipeOutcome
	m, _ := c.equalizer.Run(ctx, func(ctx context.Context) error {
		outcome = c.wipe(ctx)
		return outcome.Err()
	})

	if outcome.Status() == domain.WipeSuccess {
		c.log.Debug().
			Int("keys", len(outcome.Attempted)).
			Dur("target", m.Target).
			Dur("elapsed", m.Elapsed).
			Msg("wipe complete")
	} else {
		c.log.Warn().
			Err(outcome.Err()).
			Strs("failed_keys", outcome.FailedKeys()).
			Bool("overrun", m.Overrun).
			Msg("wipe incomplete")
	}

	c.nav.Navigate(domain.EnterDecoyApp)
}

// wipe snapshots the bearer token, detaches the logout call, then deletes
// every known key. The notification runs alongside the deletion.
func (c *DuressController) wipe(ctx context.Context) (out domain.WipeOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out.Aborted = fmt.Errorf("%w: panic: %v", vault.ErrUnavailable, r)
		}
	}()

	if c.store == nil {
		out.Aborted = vault.ErrUnavailable
		notify.Detach(ctx, c.notifier, "").DiscardResult(c.log)
		return out
	}

	notify.Detach(ctx, c.notifier, c.bearer(ctx)).DiscardResult(c.log)

	return c.store.DeleteAll(ctx, c.targets(ctx))
}

func (c *DuressController) bearer(ctx context.Context) (token string) {
	defer func() {
		if recover() != nil {
			token = ""
		}
	}()
	token, _, err := c.store.Get(ctx, domain.AuthTokenKey)
	if err != nil {
		c.log.Debug().Err(err).Msg("auth token unreadable before wipe")
		return ""
	}
	return token
}

// targets is the configured keys plus anything else the store holds.
func (c *DuressController) targets(ctx context.Context) (keys []string) {
	keys = append(keys, c.keys...)
	defer func() {
		if recover() != nil {
			c.log.Debug().Msg("store listing panicked")
		}
	}()
	listed, err := c.store.Keys(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("store listing failed")
		return keys
	}
	return append(keys, listed...)
}
