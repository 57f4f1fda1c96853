package config

import (
	"fmt"
	"strings"
)

// ConfigurationError is a fatal startup problem. It is never produced once
// the process is running.
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ConfigurationErrors collects every problem found in one pass.
type ConfigurationErrors []*ConfigurationError

func (e ConfigurationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual errors to errors.As.
func (e ConfigurationErrors) Unwrap() []error {
	errs := make([]error, 0, len(e))
	for _, err := range e {
		errs = append(errs, err)
	}
	return errs
}

func (e ConfigurationErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
