package gate

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/smallwat3r/stealthpad/internal/domain"
	"github.com/smallwat3r/stealthpad/internal/timing"
)

// UnlockController enters the genuine app after the same equalized delay
// the duress path uses.
type UnlockController struct {
	equalizer *timing.Equalizer
	nav       Navigator
	log       zerolog.Logger
}

func NewUnlockController(eq *timing.Equalizer, nav Navigator, log zerolog.Logger) *UnlockController {
	return &UnlockController{equalizer: eq, nav: orNop(nav), log: log}
}

// Trigger ignores caller cancellation so both paths wait out the full
// sampled delay.
func (c *UnlockController) Trigger(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	m, _ := c.equalizer.Run(ctx, func(context.Context) error { return nil })
	c.log.Debug().Dur("target", m.Target).Dur("elapsed", m.Elapsed).Msg("equalized transition")

	c.nav.Navigate(domain.EnterGenuineApp)
}
