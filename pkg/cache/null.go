package cache

import (
	"context"
	"time"
)

// NullCache discards everything and always misses. The CLI uses it when
// caching is disabled with --no-cache or when no cache directory can be
// resolved.
type NullCache struct{}

// NewNullCache returns a cache that never stores anything.
func NewNullCache() Cache {
	return NullCache{}
}

func (NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (NullCache) Delete(ctx context.Context, key string) error { return nil }

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
