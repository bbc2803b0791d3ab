// Package cachemanager provides a generic TTL cache used to keep recently
// served quotes out of the random draw.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a generic TTL key/value cache.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
	Keys(ctx context.Context) []K
}
