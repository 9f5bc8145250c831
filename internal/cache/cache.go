package cache

import (
	"context"
)

// ResponseCache is the time-boxed memoization used by the domain services.
// The generic type T is the decoded response shape being cached. Entries are
// valid for the configured TTL; expired entries are treated as absent.
type ResponseCache[T any] interface {
	// Get retrieves an entry. Returns the value, whether a live entry was
	// found, and any error.
	Get(ctx context.Context, key string) (T, bool, error)

	// Set stores an entry with a fresh timestamp.
	Set(ctx context.Context, key string, value T) error

	// Invalidate removes a single entry.
	Invalidate(ctx context.Context, key string) error

	// Purge removes every entry.
	Purge(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}
