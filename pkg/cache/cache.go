// Package cache stores intermediate and final placement artifacts.
//
// Every backend implements [Cache], a byte-oriented key/value store with
// per-entry expiry:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: durable cache with a TTL index
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer], which hashes the inputs and options of each
// pipeline stage so that changing any of them yields a new key.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store for serialized artifacts.
type Cache interface {
	// Get returns the stored value and whether it was present. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	// PatternTTL applies to pattern graphs. They depend only on the
	// circuit and weighting options, so they are kept for a long time.
	PatternTTL = 7 * 24 * time.Hour

	// AugmentTTL applies to augmented device graphs.
	AugmentTTL = 7 * 24 * time.Hour

	// PlacementTTL applies to placement results, which depend on the
	// solver time budget and are refreshed more often.
	PlacementTTL = 24 * time.Hour
)
