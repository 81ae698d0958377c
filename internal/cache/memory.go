package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristrettostore "github.com/eko/gocache/store/ristretto/v4"
)

// MemoryStore is an in-process Store backed by ristretto through gocache.
type MemoryStore struct {
	client  *ristretto.Cache
	manager *gocache.Cache[[]byte]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore sized for a single blog instance.
func NewMemoryStore() (*MemoryStore, error) {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     64 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	return &MemoryStore{
		client:  client,
		manager: gocache.New[[]byte](ristrettostore.NewRistretto(client)),
	}, nil
}

// Get returns the cached bytes. The ristretto store only fails on a missing key,
// so any error is reported as a miss.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := m.manager.Get(ctx, key)
	if err != nil || value == nil {
		return nil, false, nil
	}
	return value, true, nil
}

// Set stores the value and waits for ristretto's write buffer to drain so the
// entry is visible to the next Get.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := m.manager.Set(ctx, key, value,
		store.WithExpiration(ttl),
		store.WithCost(int64(len(value))),
	)
	if err != nil {
		return fmt.Errorf("failed to set item in memory cache: %w", err)
	}
	m.client.Wait()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	return m.manager.Delete(ctx, key)
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	return m.manager.Clear(ctx)
}

func (m *MemoryStore) Close() error {
	m.client.Close()
	return nil
}
