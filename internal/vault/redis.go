package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "credential:"

// RedisBackend stores sealed credentials in redis, for deployments where
// the device store is a local redis instance.
type RedisBackend struct {
	rdb *redis.Client
}

func NewRedisBackend(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

func (r *RedisBackend) Put(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, redisKey(key), value, 0).Err()
}

func (r *RedisBackend) Fetch(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return b, nil
}

// Remove is a no-op for absent keys since DEL of a missing key returns 0.
func (r *RedisBackend) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisBackend) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), redisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return keys, nil
}

func redisKey(key string) string { return redisKeyPrefix + key }
