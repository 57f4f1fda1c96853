// Package backend is a minimal stand-in for the remote service the device
// logs in to. It issues sessions and revokes them on POST /logout.
package backend

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a token matches no live session.
var ErrSessionNotFound = errors.New("session not found")

// Session is one issued token pair.
type Session struct {
	ID           string
	AuthToken    string
	RefreshToken string
}

type SessionRepository interface {
	Create(ctx context.Context, s Session, ttl time.Duration) error
	Lookup(ctx context.Context, authToken string) (Session, error)
	Revoke(ctx context.Context, authToken string) error
}

type redisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) SessionRepository {
	return &redisRepository{rdb: rdb}
}

func (r *redisRepository) Create(ctx context.Context, s Session, ttl time.Duration) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, sessionKey(s.ID), "auth", s.AuthToken, "refresh", s.RefreshToken)
		pipe.Expire(ctx, sessionKey(s.ID), ttl)
		pipe.Set(ctx, authKey(s.AuthToken), s.ID, ttl)
		pipe.Set(ctx, refreshKey(s.RefreshToken), s.ID, ttl)
		return nil
	})
	return err
}

func (r *redisRepository) Lookup(ctx context.Context, authToken string) (Session, error) {
	id, err := r.rdb.Get(ctx, authKey(authToken)).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}
	vals, err := r.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return Session{}, err
	}
	if len(vals) == 0 {
		return Session{}, ErrSessionNotFound
	}
	return Session{ID: id, AuthToken: vals["auth"], RefreshToken: vals["refresh"]}, nil
}

// Revoke deletes the session and both token indexes atomically. The watch
// on the auth index aborts if a concurrent revoke already removed it.
func (r *redisRepository) Revoke(ctx context.Context, authToken string) error {
	ak := authKey(authToken)
	return r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		id, err := tx.Get(ctx, ak).Result()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		refresh, err := tx.HGet(ctx, sessionKey(id), "refresh").Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, ak, sessionKey(id))
			if refresh != "" {
				pipe.Del(ctx, refreshKey(refresh))
			}
			return nil
		})
		return err
	}, ak)
}

func sessionKey(id string) string    { return "session:" + id }
func authKey(token string) string    { return "session:auth:" + token }
func refreshKey(token string) string { return "session:refresh:" + token }
