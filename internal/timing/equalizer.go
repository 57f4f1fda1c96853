package timing

import (
	"context"
	"time"
)

// Measurement describes one equalized run.
type Measurement struct {
	Target  time.Duration // sampled delay
	Work    time.Duration // time spent inside the operation
	Elapsed time.Duration // total time before control returned
	Overrun bool          // operation alone exceeded the target
}

// Equalizer runs an operation and then pads the total duration up to a
// delay sampled from its window. Both terminal paths share one Equalizer.
type Equalizer struct {
	window  Window
	sampler Sampler
	now     func() time.Time
}

// Option customises an Equalizer.
type Option func(*Equalizer)

// WithSampler replaces the default UniformSampler.
func WithSampler(s Sampler) Option {
	return func(e *Equalizer) { e.sampler = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Equalizer) { e.now = now }
}

// NewEqualizer builds an Equalizer for w. The window must be valid.
func NewEqualizer(w Window, opts ...Option) (*Equalizer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	e := &Equalizer{window: w, sampler: UniformSampler{}, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Window returns the configured window.
func (e *Equalizer) Window() Window { return e.window }

// Run samples the target before calling op, so the draw is independent of
// which branch is running, then sleeps for whatever is left of the target.
// If op overruns the target no extra delay is added. The sleep is a timer
// wait and only suspends the calling goroutine; cancelling ctx cuts it short.
func (e *Equalizer) Run(ctx context.Context, op func(context.Context) error) (Measurement, error) {
	start := e.now()
	target := e.sampler.Sample(e.window)

	err := op(ctx)

	work := e.now().Sub(start)
	m := Measurement{Target: target, Work: work, Overrun: work >= target}
	if remaining := target - work; remaining > 0 {
		t := time.NewTimer(remaining)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}
	m.Elapsed = e.now().Sub(start)
	return m, err
}
