package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisIdentifierLookupCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisIdentifierLookupCache(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisIdentifierLookupCache {
	if prefix == "" {
		prefix = "auth:missing_identifier"
	}
	return &RedisIdentifierLookupCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisIdentifierLookupCache) IsKnownMissing(ctx context.Context, kind, value string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, c.key(kind, value)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisIdentifierLookupCache) MarkMissing(ctx context.Context, kind, value string) error {
	if c.client == nil || c.ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.key(kind, value), "1", c.ttl).Err()
}

func (c *RedisIdentifierLookupCache) Forget(ctx context.Context, kind, value string) error {
	if c.client == nil {
		return nil
	}
	err := c.client.Del(ctx, c.key(kind, value)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (c *RedisIdentifierLookupCache) key(kind, value string) string {
	return c.prefix + ":" + identifierCacheKey(kind, value)
}
