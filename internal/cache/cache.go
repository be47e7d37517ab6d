package cache

import (
	"context"
	"time"
)

// Cache is the read-mostly projection cache. It is a performance
// optimization only: every caller must behave correctly when Get always
// misses and Set/Delete silently do nothing (cache-aside, never a source of
// truth).
type Cache interface {
	// Get unmarshals the cached value into dest and reports whether the key
	// was present
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Noop is the fallback cache used when Redis is not configured
type Noop struct{}

// NewNoop creates a cache that never stores anything
func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (n *Noop) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (n *Noop) Delete(ctx context.Context, keys ...string) error {
	return nil
}

func (n *Noop) DeletePattern(ctx context.Context, pattern string) error {
	return nil
}

func (n *Noop) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}
