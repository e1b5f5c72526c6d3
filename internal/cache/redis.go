package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/oriys/polaris/internal/domain"
	"github.com/oriys/polaris/internal/logging"
)

// RedisCache implements DecisionCache backed by Redis so multiple engine
// instances share one decision memo. Backend failures degrade to cache
// misses; they never surface as check errors.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisCacheConfig holds configuration for the Redis decision cache.
type RedisCacheConfig struct {
	Addr      string        // Redis address (e.g. "localhost:6379")
	Password  string        // Redis password
	DB        int           // Redis database number
	KeyPrefix string        // key prefix for namespacing (default "polaris:decision:")
	TTL       time.Duration // freshness window; <= 0 means DefaultTTL
}

// NewRedisCache creates a Redis-backed decision cache.
func NewRedisCache(cfg RedisCacheConfig) *RedisCache {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "polaris:decision:"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// NewRedisCacheFromClient creates a Redis decision cache using an existing
// client.
func NewRedisCacheFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "polaris:decision:"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(k Key) string {
	return c.prefix + k.String()
}

func (c *RedisCache) Get(ctx context.Context, key Key) (domain.Decision, bool) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return domain.Decision{}, false
	}
	if err != nil {
		logging.Op().Warn("redis decision cache get failed", "error", err)
		return domain.Decision{}, false
	}
	var d domain.Decision
	if err := json.Unmarshal(data, &d); err != nil {
		logging.Op().Warn("redis decision cache entry corrupt", "error", err)
		return domain.Decision{}, false
	}
	return d, true
}

func (c *RedisCache) Put(ctx context.Context, key Key, d domain.Decision) {
	data, err := json.Marshal(d)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		logging.Op().Warn("redis decision cache set failed", "error", err)
	}
}

func (c *RedisCache) Size(ctx context.Context) int {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			logging.Op().Warn("redis decision cache scan failed", "error", err)
			return count
		}
		count += len(keys)
		if next == 0 {
			return count
		}
		cursor = next
	}
}

func (c *RedisCache) Clear(ctx context.Context) {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			logging.Op().Warn("redis decision cache scan failed", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				logging.Op().Warn("redis decision cache delete failed", "error", err)
				return
			}
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
