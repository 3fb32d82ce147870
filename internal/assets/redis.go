package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores details as JSON strings with a TTL, so generated
// portraits survive restarts and are shared between instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache connects to redisURL (redis://...) and checks the
// connection with a PING.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisCacheFromClient(client, ttl), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, prefix: "crictrumps:"}
}

func (c *RedisCache) Get(ctx context.Context, key string) (Details, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Details{}, false, nil
	}
	if err != nil {
		return Details{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var d Details
	if err := json.Unmarshal(data, &d); err != nil {
		return Details{}, false, fmt.Errorf("decode cached details: %w", err)
	}
	return d, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, d Details) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
