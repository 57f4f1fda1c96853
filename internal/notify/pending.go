package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Pending is a logout notification running in its own goroutine. Callers
// must say what happens to its result: the duress path calls DiscardResult.
type Pending struct {
	done chan struct{}
	err  error
}

// Detach starts n.Logout without blocking. The call outlives ctx's
// cancellation; its deadline comes from the notifier's own client timeout.
func Detach(ctx context.Context, n Notifier, bearer string) *Pending {
	p := &Pending{done: make(chan struct{})}
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer close(p.done)
		defer func() {
			if r := recover(); r != nil {
				p.err = panicError{r}
			}
		}()
		p.err = n.Logout(ctx, bearer)
	}()
	return p
}

// DiscardResult drops the outcome on purpose. Failures reach only the local
// diagnostic log, at debug level, once the call finishes.
func (p *Pending) DiscardResult(log zerolog.Logger) {
	go func() {
		if err := p.Wait(context.Background()); err != nil {
			log.Debug().Err(err).Msg("logout notification dropped")
		}
	}()
}

// Wait blocks until the call finishes or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type panicError struct{ v any }

func (e panicError) Error() string { return "notifier panicked" }
