// Package cache is the cache-aside layer in front of the catalog read paths.
// Values are JSON documents kept in a key-value store (Redis in production,
// an in-process sturdyc client for single-node setups and tests). The cache
// is never authoritative: every entry can be rebuilt from Postgres.
package cache

import (
	"context"
	"time"
)

// Store is the key-value contract the gateway needs. Get reports a missing or
// expired key as ok=false with a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) error
	Del(ctx context.Context, key string) error
	Close() error
}
