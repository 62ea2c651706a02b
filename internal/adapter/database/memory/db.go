package memory

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"userapp/internal/core/port"
)

type memoryRepository struct {
	store *cache.Cache
}

// NewMemoryRepository keeps entries in process memory. Expired entries are
// purged every cleanupInterval.
func NewMemoryRepository(defaultTTL, cleanupInterval time.Duration) port.CacheRepository {
	return &memoryRepository{
		store: cache.New(defaultTTL, cleanupInterval),
	}
}

func (c *memoryRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}

	c.store.Set(key, stored, ttl)

	return nil
}

func (c *memoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	value, found := c.store.Get(key)
	if !found {
		return nil, nil
	}

	data, ok := value.([]byte)
	if !ok {
		return nil, nil
	}

	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}

func (c *memoryRepository) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *memoryRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}

	return nil
}

func (c *memoryRepository) Close() error {
	c.store.Flush()
	return nil
}
