package config

import (
	"errors"
	"time"

	"github.com/smallwat3r/stealthpad/internal/domain"
	"github.com/smallwat3r/stealthpad/internal/timing"
)

// ErrCodesEqual and ErrCodesOverlap reject code pairs the keypad could not
// tell apart.
var (
	ErrCodesEqual   = errors.New("stealth and duress codes must differ")
	ErrCodesOverlap = errors.New("one code is a trailing run of the other")
)

// UnlockConfig is built once at startup and handed to the keypad matcher
// and both controllers. It is immutable afterwards.
type UnlockConfig struct {
	StealthCode    domain.SecretCode
	DuressCode     domain.SecretCode
	Window         timing.Window
	IdleReset      time.Duration
	CredentialKeys []string
}

// NewUnlockConfig parses and validates the unlock settings. It is the only
// place the code pair is checked.
func NewUnlockConfig(stealth, duress string, window timing.Window, idle time.Duration, keys []string) (UnlockConfig, error) {
	var errs ConfigurationErrors

	sc, err := domain.ParseSecretCode(stealth)
	if err != nil {
		errs = append(errs, &ConfigurationError{Field: "STEALTH_CODE", Message: "invalid code", Err: err})
	}
	dc, err := domain.ParseSecretCode(duress)
	if err != nil {
		errs = append(errs, &ConfigurationError{Field: "DURESS_CODE", Message: "invalid code", Err: err})
	}
	if sc != nil && dc != nil {
		switch {
		case sc.Equal(dc):
			errs = append(errs, &ConfigurationError{Field: "DURESS_CODE", Message: "rejected", Err: ErrCodesEqual})
		case sc.IsSuffixOf(dc) || dc.IsSuffixOf(sc):
			errs = append(errs, &ConfigurationError{Field: "DURESS_CODE", Message: "rejected", Err: ErrCodesOverlap})
		}
	}
	if err := window.Validate(); err != nil {
		errs = append(errs, &ConfigurationError{Field: "TIMING_WINDOW", Message: "invalid window", Err: err})
	}
	if idle < 0 {
		errs = append(errs, &ConfigurationError{Field: "INPUT_IDLE_RESET", Message: "must not be negative"})
	}
	if len(keys) == 0 {
		keys = domain.DefaultCredentialKeys()
	}
	for _, k := range keys {
		if k == "" {
			errs = append(errs, &ConfigurationError{Field: "CREDENTIAL_KEYS", Message: "empty key in list"})
			break
		}
	}

	if err := errs.orNil(); err != nil {
		return UnlockConfig{}, err
	}
	return UnlockConfig{
		StealthCode:    sc,
		DuressCode:     dc,
		Window:         window,
		IdleReset:      idle,
		CredentialKeys: append([]string(nil), keys...),
	}, nil
}
