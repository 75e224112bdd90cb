package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const KeyPrefix = "news-importer:"

var _ Store = (*Cache)(nil)

// Cache wraps a Redis client for read-side caching of imported content
type Cache struct {
	client *redis.Client
}

// NewCache connects to Redis and verifies the connection
func NewCache(ctx context.Context, addr, password string) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	slog.Info("Connected to Redis", "addr", addr)

	return &Cache{client: client}, nil
}

// Client exposes the underlying connection for publishers sharing it
func (c *Cache) Client() *redis.Client {
	return c.client
}

// Get returns the cached value and whether the key existed
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores strings and byte slices as-is and everything else as JSON
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	var data []byte
	var err error

	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		data, err = json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
		}
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix and returns the count
func (c *Cache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	deleted := 0
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()

	batch := make([]string, 0, 100)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		if err != nil {
			return err
		}
		deleted += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return deleted, fmt.Errorf("failed to delete keys with prefix %s: %w", prefix, err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan keys with prefix %s: %w", prefix, err)
	}
	if err := flush(); err != nil {
		return deleted, fmt.Errorf("failed to delete keys with prefix %s: %w", prefix, err)
	}

	return deleted, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Health returns cache health information
func (c *Cache) Health(ctx context.Context) map[string]any {
	health := map[string]any{
		"status": "healthy",
		"type":   "redis",
	}

	if err := c.client.Ping(ctx).Err(); err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
		return health
	}

	if size, err := c.client.DBSize(ctx).Result(); err == nil {
		health["key_count"] = size
	}

	return health
}
