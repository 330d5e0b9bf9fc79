// Package blobcache caches opaque service config blobs keyed by config id.
//
// A config id's blob never changes once published (spec.md §3) — the
// backend is never asked to overwrite one, only to serve a prior download
// or accept a first one. That immutability is why SetIfAbsent exists
// alongside Set/SetWithTTL: a config fetcher racing itself (two ticks
// whose sequences overlap briefly, or a retry after a transient read
// error) can land a duplicate write for the same id, and SetIfAbsent lets
// every backend skip the redundant store instead of paying eviction-cost
// accounting twice for bytes that were already resident.
//
// The package abstracts over three backends:
//   - Single mode (Ristretto): in-process cache, one per sidecar instance
//   - HA mode (Olric): distributed cache shared by sidecars on the same
//     host group, so a config id downloaded by one instance doesn't cost
//     a second GET from its neighbors
//   - Disabled mode (Noop): every fetch goes to the backend
//
// All implementations are safe for concurrent use.
//
// Basic usage:
//
//	cfg := blobcache.Config{
//		Mode: blobcache.ModeSingle,
//		Ristretto: blobcache.RistrettoConfig{
//			NumCounters: 1e6,
//			MaxCost:     100 << 20, // 100 MB
//			BufferItems: 64,
//		},
//	}
//
//	c, err := blobcache.New(context.Background(), &cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	// Cache a freshly downloaded blob, once
//	stored, err := c.SetIfAbsent(ctx, configID, blob, 24*time.Hour)
//
//	// Retrieve a blob
//	data, err := c.Get(ctx, configID)
//	if errors.Is(err, blobcache.ErrNotFound) {
//		// Cache miss, go fetch it
//	}
package blobcache

import (
	"context"
	"time"
)

// Cache defines the interface for caching config blobs by id.
// All implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns ErrNotFound if the key does not exist.
	// Returns ErrClosed if the cache has been closed.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with no expiration.
	// Returns ErrClosed if the cache has been closed.
	Set(ctx context.Context, key string, value []byte) error

	// SetWithTTL stores a value in the cache with a time-to-live.
	// After the TTL expires, the key will no longer be retrievable.
	// Returns ErrClosed if the cache has been closed.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetIfAbsent stores a value only if the key is not already present,
	// reporting whether it stored a new value. A config blob is immutable
	// once published under its id (spec.md §3), so a caller that loses a
	// race to populate the same key can rely on the existing entry rather
	// than overwrite it with bytes it already knows to be identical.
	// Returns ErrClosed if the cache has been closed.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Delete removes a key from the cache.
	// Returns nil if the key does not exist (idempotent).
	// Returns ErrClosed if the cache has been closed.
	Delete(ctx context.Context, key string) error

	// Exists checks if a key exists in the cache.
	// Returns ErrClosed if the cache has been closed.
	Exists(ctx context.Context, key string) (bool, error)

	// Close releases resources associated with the cache.
	// After Close is called, all operations will return ErrClosed.
	// Close is idempotent.
	Close() error
}

// Stats provides cache statistics for observability.
type Stats struct {
	// Hits is the number of cache hits.
	Hits uint64 `json:"hits"`

	// Misses is the number of cache misses.
	Misses uint64 `json:"misses"`

	// KeyCount is the current number of keys in the cache.
	KeyCount uint64 `json:"key_count"`

	// BytesUsed is the approximate memory used by cached values.
	BytesUsed uint64 `json:"bytes_used"`

	// Evictions is the number of keys evicted due to capacity limits.
	Evictions uint64 `json:"evictions"`
}

// StatsProvider is an optional interface for caches that support statistics.
// Use type assertion to check if a cache implements this interface:
//
//	if sp, ok := c.(blobcache.StatsProvider); ok {
//		stats := sp.Stats()
//		// use stats
//	}
type StatsProvider interface {
	// Stats returns current cache statistics.
	Stats() Stats
}

// Pinger is an optional interface for caches that support health checks.
// For local caches, Ping always returns nil.
// For distributed caches, Ping validates cluster connectivity.
//
// Use type assertion to check if a cache implements this interface:
//
//	if p, ok := c.(blobcache.Pinger); ok {
//		if err := p.Ping(ctx); err != nil {
//			// handle unhealthy cache
//		}
//	}
type Pinger interface {
	// Ping verifies the cache connection is alive.
	// For local caches, this always returns nil.
	// For distributed caches, this validates cluster connectivity.
	Ping(ctx context.Context) error
}
