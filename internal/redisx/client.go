package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/redis/go-redis/v9"
	"strconv"
	"time"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

func Exists(ctx context.Context, rdb *redis.Client, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// Cache wraps a redis client for best-effort caching. A nil Cache or nil
// client turns every call into a miss / no-op; Postgres stays the source
// of truth.
type Cache struct{ rdb *redis.Client }

func NewCache(rdb *redis.Client) *Cache { return &Cache{rdb: rdb} }

func (c *Cache) enabled() bool { return c != nil && c.rdb != nil }

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if !c.enabled() {
		return "", false
	}
	s, err := c.rdb.Get(ctx, key).Result()
	if err != nil || s == "" {
		return "", false
	}
	return s, true
}

func (c *Cache) Set(ctx context.Context, key, val string, ttl time.Duration) {
	if !c.enabled() {
		return
	}
	_ = c.rdb.Set(ctx, key, val, ttl).Err()
}

func (c *Cache) GetJSON(ctx context.Context, key string, out any) bool {
	s, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(s), out) == nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if !c.enabled() {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key, b, ttl).Err()
}

func (c *Cache) Del(ctx context.Context, keys ...string) {
	if !c.enabled() || len(keys) == 0 {
		return
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}

// Version returns the counter stored at key, 0 when missing.
func (c *Cache) Version(ctx context.Context, key string) int64 {
	s, ok := c.Get(ctx, key)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

// Bump increments a version counter so keys derived from the old value go stale.
func (c *Cache) Bump(ctx context.Context, key string) {
	if !c.enabled() {
		return
	}
	_ = c.rdb.Incr(ctx, key).Err()
}

// Seen reports whether key exists. Errors count as not seen.
func (c *Cache) Seen(ctx context.Context, key string) bool {
	if !c.enabled() {
		return false
	}
	ok, err := Exists(ctx, c.rdb, key)
	return err == nil && ok
}

// Claim sets key only if absent; false means another caller already holds it.
func (c *Cache) Claim(ctx context.Context, key, val string, ttl time.Duration) (bool, error) {
	if !c.enabled() {
		return true, nil
	}
	ok, err := c.rdb.SetNX(ctx, key, val, ttl).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return ok, err
}
