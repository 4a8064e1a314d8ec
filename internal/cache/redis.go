package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/homecare/config"
	"github.com/redis/go-redis/v9"
)

// RedisCache guards finalization against gateway redelivery.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(cfg config.RedisConfig) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

// AcquireFinalization claims key for ttl. false means another delivery of the
// same session already claimed it.
func (c *RedisCache) AcquireFinalization(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, finalizeKey(key), "in-flight", ttl).Result()
}

// ReleaseFinalization drops the claim so a failed attempt can be retried.
func (c *RedisCache) ReleaseFinalization(ctx context.Context, key string) error {
	return c.client.Del(ctx, finalizeKey(key)).Err()
}

func (c *RedisCache) StoreOutcome(ctx context.Context, key, text string, ttl time.Duration) error {
	return c.client.Set(ctx, outcomeKey(key), text, ttl).Err()
}

// Outcome returns the reply stored for key, if any.
func (c *RedisCache) Outcome(ctx context.Context, key string) (string, bool, error) {
	text, err := c.client.Get(ctx, outcomeKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return text, true, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func finalizeKey(key string) string {
	return "finalize:" + key
}

func outcomeKey(key string) string {
	return "outcome:" + key
}
