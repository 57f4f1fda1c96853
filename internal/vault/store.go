// Package vault is the secure credential store: a small key/value API over
// an opaque, encrypted-at-rest platform backend.
package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/smallwat3r/stealthpad/internal/domain"
)

// Store is the credential store contract used by the login flow and by the
// duress wipe.
type Store interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	DeleteAll(ctx context.Context, keys []string) domain.WipeOutcome
	Keys(ctx context.Context) ([]string, error)
}

// Backend is the platform capability the store sits on. Values handed to a
// backend are already sealed; backends never see plaintext.
type Backend interface {
	Put(ctx context.Context, key string, value []byte) error
	// Fetch returns ErrNotFound when key is absent.
	Fetch(ctx context.Context, key string) ([]byte, error)
	// Remove succeeds when key is absent.
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// CredentialStore owns the sealed bytes; callers only ever see plaintext
// through Get.
type CredentialStore struct {
	backend Backend
	sealer  *Sealer
}

// New returns a CredentialStore. A nil sealer stores values as-is, for
// backends that already encrypt at rest.
func New(backend Backend, sealer *Sealer) *CredentialStore {
	return &CredentialStore{backend: backend, sealer: sealer}
}

// Set stores value under key, replacing any previous value.
func (s *CredentialStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return storeErr("set", key, ErrEmptyKey)
	}
	if value == "" {
		return storeErr("set", key, ErrEmptyValue)
	}
	blob := []byte(value)
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(key, blob)
		if err != nil {
			return storeErr("set", key, err)
		}
		blob = sealed
	}
	return storeErr("set", key, s.backend.Put(ctx, key, blob))
}

// Get returns the plaintext for key. found is false when the key is absent.
func (s *CredentialStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, storeErr("get", key, ErrEmptyKey)
	}
	blob, err := s.backend.Fetch(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("get", key, err)
	}
	if s.sealer != nil {
		pt, err := s.sealer.Open(key, blob)
		if err != nil {
			return "", false, storeErr("get", key, err)
		}
		defer clear(pt)
		return string(pt), true, nil
	}
	return string(blob), true, nil
}

// Delete removes key; removing an absent key is not an error.
func (s *CredentialStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return storeErr("delete", key, ErrEmptyKey)
	}
	return storeErr("delete", key, s.backend.Remove(ctx, key))
}

// Keys lists the credential keys the backend currently holds.
func (s *CredentialStore) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return nil, storeErr("keys", "", err)
	}
	return keys, nil
}

// DeleteAll attempts every key independently and never stops at the first
// failure. A panicking backend is recorded as a failure for that key.
func (s *CredentialStore) DeleteAll(ctx context.Context, keys []string) domain.WipeOutcome {
	var out domain.WipeOutcome
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, dup := seen[key]; dup || key == "" {
			continue
		}
		seen[key] = struct{}{}
		out.Attempted = append(out.Attempted, key)
		if err := s.deleteGuarded(ctx, key); err != nil {
			out.Failures = append(out.Failures, domain.KeyFailure{Key: key, Err: err})
		}
	}
	return out
}

func (s *CredentialStore) deleteGuarded(ctx context.Context, key string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = storeErr("delete", key, fmt.Errorf("%w: panic: %v", ErrUnavailable, r))
		}
	}()
	return s.Delete(ctx, key)
}
