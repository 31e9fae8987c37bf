package redisx

import (
	"context"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestCache_NilIsNoop(t *testing.T) {
	ctx := context.Background()
	for name, c := range map[string]*Cache{"nil cache": nil, "nil client": NewCache(nil)} {
		c.Set(ctx, "k", "v", time.Minute)
		c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute)
		c.Del(ctx, "k")
		c.Bump(ctx, KeyCatalogVersion)

		_, found := c.Get(ctx, "k")
		require.False(t, found, name)
		var out map[string]int
		require.False(t, c.GetJSON(ctx, "k", &out), name)
		require.Zero(t, c.Version(ctx, KeyCatalogVersion), name)
		require.False(t, c.Seen(ctx, "k"), name)

		claimed, err := c.Claim(ctx, "k", "pending", time.Minute)
		require.NoError(t, err, name)
		require.True(t, claimed, name)
	}
}

// Redis yang tidak bisa dihubungi diperlakukan sebagai cache miss.
func TestCache_UnreachableServerIsMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	c := NewCache(rdb)
	ctx := context.Background()

	c.Set(ctx, "k", "v", time.Minute)
	_, found := c.Get(ctx, "k")
	require.False(t, found)
	require.False(t, c.Seen(ctx, "k"))
	require.Zero(t, c.Version(ctx, KeyCatalogVersion))

	_, err := c.Claim(ctx, "k", "pending", time.Minute)
	require.Error(t, err)
}
