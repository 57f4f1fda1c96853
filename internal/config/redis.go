package config

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisOptions parses RedisURL and applies the pool settings.
func (c Config) RedisOptions() (*redis.Options, error) {
	opt, err := redis.ParseURL(c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("REDIS_URL: %w", err)
	}
	opt.PoolSize = c.RedisPoolSize
	opt.MinIdleConns = c.RedisMinIdle
	opt.DialTimeout = c.RedisDialTimeout
	opt.ReadTimeout = c.RedisReadTimeout
	opt.WriteTimeout = c.RedisWriteTimeout
	opt.PoolTimeout = c.RedisPoolTimeout
	return opt, nil
}
