package cachemanager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInMemoryCacheManager_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)

	_, found := c.Get(ctx, "missing")
	require.False(t, found)

	c.Set(ctx, "quote-1", "served", time.Minute)
	v, found := c.Get(ctx, "quote-1")
	require.True(t, found)
	require.Equal(t, "served", v)
}

func TestInMemoryCacheManager_Expiration(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)

	c.Set(ctx, "quote-1", "served", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, found := c.Get(ctx, "quote-1")
	require.False(t, found, "entry should expire")
}

func TestInMemoryCacheManager_DeleteAndFlush(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)

	c.Set(ctx, "a", 1, time.Minute)
	c.Set(ctx, "b", 2, time.Minute)
	require.Len(t, c.Keys(ctx), 2)

	require.NoError(t, c.Delete(ctx, "a"))
	_, found := c.Get(ctx, "a")
	require.False(t, found)

	require.NoError(t, c.Flush(ctx))
	require.Empty(t, c.Keys(ctx))
}
