// Package cache хранит список отозванных токенов доступа в Redis.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations — минимальный контракт списка отозванных токенов.
type Revocations interface {
	// Revoke помечает jti отозванным на ttl (обычно до истечения токена).
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked сообщает, отозван ли jti.
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// Ping проверяет доступность Redis.
	Ping(ctx context.Context) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisRevocations struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedis создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "diary:revoked:".
func NewRedis(ctx context.Context, redisURL, prefix string) (Revocations, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return newRevocations(rdb, prefix), nil
}

func newRevocations(rdb redis.UniversalClient, prefix string) *redisRevocations {
	if prefix == "" {
		prefix = "diary:revoked:"
	}

	return &redisRevocations{rdb: rdb, prefix: prefix}
}

func (c *redisRevocations) key(jti string) string { return c.prefix + jti }

// Revoke: ttl <= 0 означает, что токен уже истёк и хранить нечего.
func (c *redisRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	return c.rdb.Set(ctx, c.key(jti), "1", ttl).Err()
}

func (c *redisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, c.key(jti)).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (c *redisRevocations) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *redisRevocations) Close() error { return c.rdb.Close() }
