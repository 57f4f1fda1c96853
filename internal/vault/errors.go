package vault

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by backends when a key is absent.
	ErrNotFound = errors.New("credential not found")

	ErrEmptyKey   = errors.New("credential key must not be empty")
	ErrEmptyValue = errors.New("credential value must not be empty")

	// ErrUnavailable wraps failures of the platform store itself.
	ErrUnavailable = errors.New("credential store unavailable")
)

// StoreError is a per-key failure of a store operation.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vault %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Key: key, Err: err}
}
