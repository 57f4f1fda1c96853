package vault

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallwat3r/stealthpad/internal/config"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	for _, backend := range []string{config.BackendSQLite, config.BackendRedis, config.BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.StoreBackend = backend
			cfg.StorePath = filepath.Join(t.TempDir(), "vault.db")

			s, closer, err := Open(cfg, rdb)
			require.NoError(t, err)
			defer closer.Close()

			require.NoError(t, s.Set(ctx, "authToken", "x"))
			v, found, err := s.Get(ctx, "authToken")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "x", v)
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.StoreBackend = config.BackendRedis
	_, _, err := Open(cfg, nil)
	assert.Error(t, err)

	cfg.StoreBackend = "keychain"
	_, _, err = Open(cfg, nil)
	assert.Error(t, err)
}
