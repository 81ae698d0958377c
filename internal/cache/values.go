package cache

import (
	"context"
	"time"
)

// Load reads a typed entry stored with Put.
func Load[V any](ctx context.Context, store Store, key string) (Result[V], error) {
	b, found, err := store.Get(ctx, key)
	if err != nil {
		return MissOf[V](), err
	}
	if !found {
		return MissOf[V](), nil
	}
	return decodeResult[V](b)
}

// Put stores v under key.
func Put[V any](ctx context.Context, store Store, key string, v V, ttl time.Duration) error {
	b, err := encodeResult(SomeOf(v))
	if err != nil {
		return err
	}
	return store.Set(ctx, key, b, ttl)
}
