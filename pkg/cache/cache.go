// Package cache provides result caching for allocation runs.
//
// Solving a plan is deterministic, so a plan's content hash fully identifies
// its result. Backends share one interface: [FileCache] for CLI usage,
// [RedisCache] for shared deployments, and [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// Default expiry per artifact class. Results are small and cheap to keep;
// rendered artifacts are larger and regenerable from a cached result.
const (
	TTLResult = 30 * 24 * time.Hour
	TTLRender = 7 * 24 * time.Hour
)

// Cache stores raw bytes under string keys with optional expiry.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys for the artifacts of an allocation run.
type Keyer interface {
	// ResultKey identifies the allocation result for a plan's content hash.
	ResultKey(planHash string) string

	// RenderKey identifies a rendered artifact (dot, svg) for a result.
	RenderKey(planHash, format string) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ResultKey generates a key for allocation result caching.
func (k *DefaultKeyer) ResultKey(planHash string) string {
	return hashKey("result", planHash)
}

// RenderKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) RenderKey(planHash, format string) string {
	return hashKey("render", planHash, format)
}
