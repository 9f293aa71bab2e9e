package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ZaguanLabs/wptl"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultKeyPrefix namespaces every key written by RedisCache.
const DefaultKeyPrefix = "wptl:"

// opTimeout bounds each cache round trip so a slow Redis never stalls a run.
const opTimeout = 2 * time.Second

// RedisCache is a Redis-backed translation cache shared between runs and hosts.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string        // Redis connection URL (e.g., "redis://localhost:6379")
	TTL       time.Duration // Zero keeps entries forever
	KeyPrefix string        // Prefix for all keys (default: "wptl:")
	Logger    *zap.Logger
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, &wptl.CacheError{Message: "invalid redis url", Cause: err}
	}

	c := NewRedisCacheFromClient(redis.NewClient(opts), cfg.TTL, cfg.KeyPrefix)
	if cfg.Logger != nil {
		c.logger = cfg.Logger
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.client.Ping(pingCtx).Err(); err != nil {
		_ = c.client.Close()
		return nil, &wptl.CacheError{Message: "connecting to redis", Cause: err}
	}
	return c, nil
}

// NewRedisCacheFromClient creates a RedisCache from an existing Redis client.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		logger:    zap.NewNop(),
	}
}

// Get retrieves a value from Redis. Connection failures read as a miss.
func (c *RedisCache) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.logger.Debug("redis get failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return val, true
}

// Set stores a value in Redis.
func (c *RedisCache) Set(key string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, c.keyPrefix+key, value, c.ttl).Err(); err != nil {
		return &wptl.CacheError{Message: "redis set", Cause: err}
	}
	return nil
}

// Entries scans every key under the prefix.
func (c *RedisCache) Entries() (map[string]string, error) {
	ctx := context.Background()
	result := make(map[string]string)

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, &wptl.CacheError{Message: "redis scan", Cause: err}
		}
		if len(keys) > 0 {
			vals, err := c.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, &wptl.CacheError{Message: "redis mget", Cause: err}
			}
			for i, v := range vals {
				if s, ok := v.(string); ok {
					result[strings.TrimPrefix(keys[i], c.keyPrefix)] = s
				}
			}
		}
		cursor = next
		if cursor == 0 {
			return result, nil
		}
	}
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

var (
	_ Store      = (*RedisCache)(nil)
	_ Enumerable = (*RedisCache)(nil)
)
