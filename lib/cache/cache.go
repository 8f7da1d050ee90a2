package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Local is an in-process cache with cost based eviction, keyed by string.
// Writes are applied asynchronously and may be dropped under contention, so a
// Get straight after a Set can miss.
type Local[V any] struct {
	name  string
	inner *ristretto.Cache
}

// NewLocal creates a cache that holds roughly maxItems entries of cost 1.
func NewLocal[V any](name string, maxItems int64) (*Local[V], error) {
	if maxItems <= 0 {
		return nil, fmt.Errorf("cache %s: max items must be positive, got %d", name, maxItems)
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		// ristretto recommends tracking 10x the number of items expected
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache %s: %w", name, err)
	}
	return &Local[V]{name: name, inner: c}, nil
}

func (l *Local[V]) Name() string {
	return l.name
}

func (l *Local[V]) Get(k string) (V, bool) {
	var zero V
	v, ok := l.inner.Get(k)
	if !ok {
		return zero, false
	}
	ret, ok := v.(V)
	if !ok {
		return zero, false
	}
	return ret, true
}

func (l *Local[V]) Set(k string, v V) bool {
	return l.inner.Set(k, v, 1)
}

func (l *Local[V]) SetWithTTL(k string, v V, ttl time.Duration) bool {
	return l.inner.SetWithTTL(k, v, 1, ttl)
}

// Wait blocks until all buffered writes have been applied.
func (l *Local[V]) Wait() {
	l.inner.Wait()
}

func (l *Local[V]) Close() {
	l.inner.Close()
}

func (l *Local[V]) Hits() uint64 {
	return l.inner.Metrics.Hits()
}

func (l *Local[V]) Misses() uint64 {
	return l.inner.Metrics.Misses()
}
