// Package cache stores render artifacts keyed by graph content.
//
// Rendering the same graph with the same options always produces the same
// bytes, so artifacts are cached under keys derived from a SHA-256 hash of
// the graph payload plus the render options. Three backends exist:
// [FileCache] for CLI runs, [RedisCache] for server deployments, and
// [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry TTLs. A zero TTL means the entry
// never expires. Get reports a miss with ok=false and a nil error;
// errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
