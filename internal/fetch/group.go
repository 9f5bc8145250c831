// Package fetch coalesces service reads. A Group combines a time-boxed
// response cache with in-flight request de-duplication: a live cache entry
// is returned without a network call, concurrent callers for the same key
// share one underlying call, and only successful results are written
// through to the cache.
package fetch

import (
	"context"
	"net/url"

	"golang.org/x/sync/singleflight"

	"github.com/bincshop/storefront-client/internal/cache"
)

// FetchFunc produces the value for a key when neither the cache nor an
// in-flight request can serve it.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Group de-duplicates fetches per key. At most one underlying call per
// distinct key is outstanding at any time.
type Group[T any] struct {
	cache  cache.ResponseCache[T]
	flight singleflight.Group
}

func NewGroup[T any](c cache.ResponseCache[T]) *Group[T] {
	return &Group[T]{cache: c}
}

// Do returns the value for key, from cache if a live entry exists, from an
// in-flight call if one is pending, or by invoking fn. On success the value
// is written through with a fresh timestamp; on failure nothing is cached
// and the in-flight marker is released so the next caller retries.
//
// A joined caller shares the result of the initiating caller's call; the
// initiating caller's context governs the request.
func (g *Group[T]) Do(ctx context.Context, key string, fn FetchFunc[T]) (T, error) {
	if value, ok, err := g.cache.Get(ctx, key); err == nil && ok {
		return value, nil
	}

	result, err, _ := g.flight.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if cerr := g.cache.Set(ctx, key, value); cerr != nil {
			// A cache write failure must not fail the fetch; the value is
			// still valid for the caller.
			return value, nil
		}
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result.(T), nil
}

// Forget drops both the cache entry and any completed flight for key, so
// the next call fetches fresh data.
func (g *Group[T]) Forget(ctx context.Context, key string) error {
	g.flight.Forget(key)
	return g.cache.Invalidate(ctx, key)
}

// Purge drops every cached entry.
func (g *Group[T]) Purge(ctx context.Context) error {
	return g.cache.Purge(ctx)
}

// Key derives the request signature for a resource and its parameters. Two
// logically identical requests produce the same key: url.Values encoding
// sorts parameters by name.
func Key(resource string, params url.Values) string {
	if len(params) == 0 {
		return resource
	}
	return resource + "?" + params.Encode()
}
