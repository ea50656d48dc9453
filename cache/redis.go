package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces every key this package writes to Redis.
const DefaultKeyPrefix = "xlitfix:"

const (
	opTimeout = 2 * time.Second
	scanCount = 500
)

// RedisCache is a Redis-backed model output cache. Lookup errors are
// reported as misses; the pipeline then asks the model again.
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string       // Redis connection URL (e.g., "redis://localhost:6379")
	TTL       int          // TTL in seconds (0 = no expiration)
	KeyPrefix string       // Prefix for all keys (default: "xlitfix:")
	Logger    *slog.Logger // Logger for lookup errors (default: slog.Default())
}

// NewRedisCache creates a new Redis cache with the given configuration.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	c := NewRedisCacheFromClient(client, cfg.TTL, cfg.KeyPrefix)
	if cfg.Logger != nil {
		c.logger = cfg.Logger
	}
	return c, nil
}

// NewRedisCacheFromClient creates a RedisCache from an existing Redis client.
func NewRedisCacheFromClient(client *redis.Client, ttlSeconds int, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}

	ttl := time.Duration(ttlSeconds) * time.Second
	if ttlSeconds <= 0 {
		ttl = 0
	}

	return &RedisCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: keyPrefix,
		logger:    slog.Default(),
	}
}

// Get retrieves a value from Redis.
func (c *RedisCache) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("redis get failed, treating as miss", "key", key, "error", err)
		}
		c.misses.Add(1)
		return "", false
	}
	c.hits.Add(1)
	return val, true
}

// Set stores a value in Redis.
func (c *RedisCache) Set(key string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return c.client.Set(ctx, c.keyPrefix+key, value, c.ttl).Err()
}

// Entries returns every entry under the key prefix, with the prefix removed.
// Keys that expire between SCAN and MGET are skipped.
func (c *RedisCache) Entries() (map[string]string, error) {
	ctx := context.Background()
	result := make(map[string]string)

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.keyPrefix+"*", scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("scanning keys: %w", err)
		}

		if len(keys) > 0 {
			vals, err := c.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, fmt.Errorf("reading values: %w", err)
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

// Stats returns hit and miss counts.
func (c *RedisCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

// Verify RedisCache implements Enumerable
var _ Enumerable = (*RedisCache)(nil)
