package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"devdash/internal/core/port"
)

type memoryRepository struct {
	cache *cache.Cache
}

// NewMemoryRepository keeps entries in process; expired entries are swept
// every cleanup interval.
func NewMemoryRepository(cleanup time.Duration) port.CacheRepository {
	return &memoryRepository{cache: cache.New(cache.NoExpiration, cleanup)}
}

func (c *memoryRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	c.cache.Set(key, value, ttl)

	return nil
}

func (c *memoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := c.cache.Get(key)

	if !ok {
		return nil, nil
	}

	return value.([]byte), nil
}

func (c *memoryRepository) Delete(ctx context.Context, key string) error {
	c.cache.Delete(key)

	return nil
}

func (c *memoryRepository) Close() error {
	c.cache.Flush()

	return nil
}
