package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// DefaultWriteTimeout bounds a cache write that outlives its request.
const DefaultWriteTimeout = 2 * time.Second

// Gateway runs read paths through the cache-aside protocol. Cache failures
// are logged and never reach the caller. There is no invalidation on write:
// entries live until their TTL runs out.
type Gateway struct {
	store        Store
	logger       *log.Logger
	writeTimeout time.Duration
}

// NewGateway creates a Gateway. A non-positive writeTimeout uses DefaultWriteTimeout.
func NewGateway(store Store, logger *log.Logger, writeTimeout time.Duration) *Gateway {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Gateway{store: store, logger: logger, writeTimeout: writeTimeout}
}

// Fetch returns the value cached under key, or computes it, caches its JSON
// encoding for ttl and returns it. A ttl of zero caches without expiry.
//
// Errors from compute are returned as is and nothing is cached.
func Fetch[T any](ctx context.Context, g *Gateway, key string, ttl time.Duration, compute func(ctx context.Context) (T, error)) (T, error) {
	if cached, ok := lookup[T](ctx, g, key); ok {
		return cached, nil
	}

	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	g.put(ctx, key, ttl, value)
	return value, nil
}

func lookup[T any](ctx context.Context, g *Gateway, key string) (T, bool) {
	var cached T
	raw, ok, err := g.store.Get(ctx, key)
	if err != nil {
		g.logger.Printf("WARN: cache: get %q failed, reading from store: %v", key, err)
		return cached, false
	}
	if !ok {
		return cached, false
	}
	if err := json.Unmarshal(raw, &cached); err != nil {
		g.logger.Printf("WARN: cache: dropping undecodable entry %q: %v", key, err)
		if derr := g.store.Del(ctx, key); derr != nil {
			g.logger.Printf("WARN: cache: del %q failed: %v", key, derr)
		}
		var zero T
		return zero, false
	}
	return cached, true
}

// put writes on a context detached from request cancellation, so an aborted
// request still populates the cache. Failures are only logged.
func (g *Gateway) put(ctx context.Context, key string, ttl time.Duration, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		g.logger.Printf("WARN: cache: encoding %q failed: %v", key, err)
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.writeTimeout)
	defer cancel()

	if ttl > 0 {
		err = g.store.SetEx(writeCtx, key, ttl, raw)
	} else {
		err = g.store.Set(writeCtx, key, raw)
	}
	if err != nil {
		g.logger.Printf("WARN: cache: write %q failed: %v", key, err)
	}
}
