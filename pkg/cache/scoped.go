package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This keeps results separate when several users or environments share one
// backend (most relevant for the redis cache).
//
// Example usage:
//
//	// User-specific keys
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
//
//	// Shared keys
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ResultKey generates a prefixed key for allocation result caching.
func (k *ScopedKeyer) ResultKey(planHash string) string {
	return k.prefix + k.inner.ResultKey(planHash)
}

// RenderKey generates a prefixed key for rendered artifact caching.
func (k *ScopedKeyer) RenderKey(planHash, format string) string {
	return k.prefix + k.inner.RenderKey(planHash, format)
}
