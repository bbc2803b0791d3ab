package quotes

import (
	"context"
	"time"

	"github.com/zjrosen/ciphergram/internal/cachemanager"
	"github.com/zjrosen/ciphergram/internal/log"
)

// maxRedraws bounds how many times the filter retries before giving up and
// serving a recently seen quote anyway.
const maxRedraws = 8

// NoRepeat wraps a Provider and filters out quotes served within a TTL
// window, so back-to-back games don't hand out the same puzzle.
type NoRepeat struct {
	inner  Provider
	seen   cachemanager.CacheManager[string, struct{}]
	window time.Duration
}

var _ Provider = (*NoRepeat)(nil)

// NewNoRepeat creates a no-repeat filter around the given provider.
// A window of zero disables filtering.
func NewNoRepeat(inner Provider, window time.Duration) *NoRepeat {
	return &NoRepeat{
		inner:  inner,
		seen:   cachemanager.NewInMemoryCacheManager[string, struct{}]("quote-no-repeat", window, 2*window),
		window: window,
	}
}

// Random draws from the inner provider, redrawing when the quote was served
// within the window. When the pool is exhausted by the window the last draw
// is served anyway, so a small pool never blocks a new game.
func (n *NoRepeat) Random(ctx context.Context) (Quote, error) {
	q, err := n.inner.Random(ctx)
	if err != nil {
		return Quote{}, err
	}
	if n.window <= 0 {
		return q, nil
	}

	for i := 0; i < maxRedraws; i++ {
		if _, recent := n.seen.Get(ctx, q.ID); !recent {
			n.seen.Set(ctx, q.ID, struct{}{}, n.window)
			return q, nil
		}
		q, err = n.inner.Random(ctx)
		if err != nil {
			return Quote{}, err
		}
	}

	log.Debug(log.CatQuote, "No-repeat window exhausted the pool, serving repeat", "quote_id", q.ID)
	n.seen.Set(ctx, q.ID, struct{}{}, n.window)
	return q, nil
}
