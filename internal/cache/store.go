// Package cache holds the key/value cache used across the blog: pluggable byte
// stores, call-signature key resolution, a memoizing wrapper and fragment
// invalidation helpers.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-blog-app/internal/config"
)

// Store is a byte-oriented key/value cache with per-entry expiry.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the stored bytes and whether the key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A zero ttl means the entry does not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear removes every entry owned by the store.
	Clear(ctx context.Context) error
	Close() error
}

// New builds the Store selected by cfg.Driver.
func New(cfg config.CacheConfig, redisCfg config.RedisConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		return NewMemoryStore()
	case "sqlite":
		return NewSQLiteStore(cfg.FilePath)
	case "redis":
		return NewRedisStore(context.Background(), redisCfg)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}
