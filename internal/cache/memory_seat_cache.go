package cache

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const DefaultCleanupInterval = 10 * time.Minute

// MemorySeatCache 單機部署用，不需要 Redis
type MemorySeatCache struct {
	cache *gocache.Cache
}

func NewMemorySeatCache(ttl time.Duration) SeatCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemorySeatCache{
		cache: gocache.New(ttl, DefaultCleanupInterval),
	}
}

func (c *MemorySeatCache) key(eventID int) string {
	return strconv.Itoa(eventID)
}

func (c *MemorySeatCache) GetAvailable(ctx context.Context, eventID int) (int, error) {
	value, found := c.cache.Get(c.key(eventID))
	if !found {
		return 0, ErrCacheMiss
	}
	available, ok := value.(int)
	if !ok {
		c.cache.Delete(c.key(eventID))
		return 0, ErrCacheMiss
	}
	return available, nil
}

func (c *MemorySeatCache) SetAvailable(ctx context.Context, eventID int, available int) error {
	c.cache.SetDefault(c.key(eventID), available)
	return nil
}

func (c *MemorySeatCache) Invalidate(ctx context.Context, eventID int) error {
	c.cache.Delete(c.key(eventID))
	return nil
}
