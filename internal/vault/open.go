package vault

import (
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/smallwat3r/stealthpad/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the configured store. rdb is only used by the redis backend.
// The returned closer releases the backend.
func Open(cfg config.Config, rdb *redis.Client) (*CredentialStore, io.Closer, error) {
	var sealer *Sealer
	if cfg.DeviceKey != "" {
		s, err := NewSealer(cfg.DeviceKey, DefaultCryptoConfig())
		if err != nil {
			return nil, nil, err
		}
		sealer = s
	}

	switch cfg.StoreBackend {
	case config.BackendSQLite:
		b, err := OpenSQLiteBackend(cfg.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return New(b, sealer), b, nil
	case config.BackendRedis:
		if rdb == nil {
			return nil, nil, errors.New("redis store selected but no redis client")
		}
		return New(NewRedisBackend(rdb), sealer), nopCloser{}, nil
	case config.BackendMemory:
		return New(NewMemoryBackend(), sealer), nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
