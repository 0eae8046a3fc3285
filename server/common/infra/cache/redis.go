package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

func Ping(ctx context.Context, c *redis.Client) error {
	return c.Ping(ctx).Err()
}

// JSONCache stores JSON-encoded values under a fixed key prefix.
type JSONCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewJSONCache(client redis.Cmdable, prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *JSONCache) Key(name string) string {
	return c.prefix + name
}

// Get reports found=false on a miss; err is set only for transport or decode failures.
func (c *JSONCache) Get(ctx context.Context, name string, out any) (bool, error) {
	raw, err := c.client.Get(ctx, c.Key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.Key(name), raw, c.ttl).Err()
}

func (c *JSONCache) Delete(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	keys := make([]string, 0, len(names))
	for _, n := range names {
		keys = append(keys, c.Key(n))
	}
	return c.client.Del(ctx, keys...).Err()
}
