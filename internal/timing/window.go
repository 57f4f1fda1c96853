// Package timing equalizes how long the unlock and duress paths take
// before they produce a visible effect.
package timing

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// Window is the range the per-invocation target delay is drawn from.
type Window struct {
	Min time.Duration
	Max time.Duration
}

// Validate rejects negative or inverted windows.
func (w Window) Validate() error {
	if w.Min < 0 {
		return errors.New("window minimum must not be negative")
	}
	if w.Max < w.Min {
		return fmt.Errorf("window maximum %v is below minimum %v", w.Max, w.Min)
	}
	return nil
}

// Contains reports whether d falls inside the window, inclusive.
func (w Window) Contains(d time.Duration) bool {
	return d >= w.Min && d <= w.Max
}

func (w Window) String() string {
	return fmt.Sprintf("[%v, %v]", w.Min, w.Max)
}

// Sampler picks a target delay from a window.
type Sampler interface {
	Sample(w Window) time.Duration
}

// SamplerFunc adapts a function to Sampler.
type SamplerFunc func(w Window) time.Duration

func (f SamplerFunc) Sample(w Window) time.Duration { return f(w) }

// UniformSampler draws uniformly from the window using crypto/rand, so an
// observer cannot predict the delay of the next attempt.
type UniformSampler struct{}

func (UniformSampler) Sample(w Window) time.Duration {
	span := int64(w.Max - w.Min)
	if span <= 0 {
		return w.Min
	}
	n, err := rand.Int(rand.Reader, big.NewInt(span+1))
	if err != nil {
		// the reader failing is unrecoverable for key material but not
		// for a delay; fall back to the widest value so the floor holds.
		return w.Max
	}
	return w.Min + time.Duration(n.Int64())
}

// FixedSampler always returns the same delay, clamped to the window.
type FixedSampler time.Duration

func (f FixedSampler) Sample(w Window) time.Duration {
	d := time.Duration(f)
	if d < w.Min {
		return w.Min
	}
	if d > w.Max {
		return w.Max
	}
	return d
}
