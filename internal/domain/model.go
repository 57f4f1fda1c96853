package domain

import (
	"errors"
	"fmt"
)

// MatchResult is what the keypad matcher reports after each token.
type MatchResult int

const (
	MatchNone MatchResult = iota
	MatchStealth
	MatchDuress
)

func (m MatchResult) String() string {
	switch m {
	case MatchStealth:
		return "stealth"
	case MatchDuress:
		return "duress"
	default:
		return "none"
	}
}

// Destination is the opaque navigation signal handed to the UI layer.
type Destination int

const (
	// DestinationNone means the disguise is still showing.
	DestinationNone Destination = iota
	EnterGenuineApp
	EnterDecoyApp
)

func (d Destination) String() string {
	switch d {
	case EnterGenuineApp:
		return "genuine"
	case EnterDecoyApp:
		return "decoy"
	default:
		return "calculator"
	}
}

// WipeStatus summarises a WipeOutcome.
type WipeStatus int

const (
	WipeSuccess WipeStatus = iota
	WipePartialFailure
)

func (s WipeStatus) String() string {
	if s == WipeSuccess {
		return "success"
	}
	return "partial_failure"
}

// KeyFailure records one credential that could not be removed.
type KeyFailure struct {
	Key string
	Err error
}

// WipeOutcome is the result of a bulk credential deletion. It is only ever
// logged; it never changes where the UI goes next.
type WipeOutcome struct {
	Attempted []string
	Failures  []KeyFailure
	// Aborted is set when the wipe could not run at all, e.g. the platform
	// store was unavailable or panicked.
	Aborted error
}

// Status reports WipeSuccess only if every key was removed.
func (o WipeOutcome) Status() WipeStatus {
	if o.Aborted != nil || len(o.Failures) > 0 {
		return WipePartialFailure
	}
	return WipeSuccess
}

// Err joins every failure, or returns nil on success.
func (o WipeOutcome) Err() error {
	if o.Status() == WipeSuccess {
		return nil
	}
	errs := make([]error, 0, len(o.Failures)+1)
	if o.Aborted != nil {
		errs = append(errs, fmt.Errorf("wipe aborted: %w", o.Aborted))
	}
	for _, f := range o.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Key, f.Err))
	}
	return errors.Join(errs...)
}

// FailedKeys lists keys that are possibly still present.
func (o WipeOutcome) FailedKeys() []string {
	keys := make([]string, 0, len(o.Failures))
	for _, f := range o.Failures {
		keys = append(keys, f.Key)
	}
	return keys
}
