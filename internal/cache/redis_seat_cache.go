package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisSeatCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSeatCache(client *redis.Client, ttl time.Duration) SeatCache {
	return &RedisSeatCache{
		client: client,
		ttl:    ttl,
	}
}

// 名額 key
func (c *RedisSeatCache) getSeatsKey(eventID int) string {
	return fmt.Sprintf("event:%d:seats", eventID)
}

func (c *RedisSeatCache) GetAvailable(ctx context.Context, eventID int) (int, error) {
	val, err := c.client.HGet(ctx, c.getSeatsKey(eventID), "available").Int()
	if errors.Is(err, redis.Nil) {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

// SetAvailable HSET 與 EXPIRE 在同一個 MULTI 內執行
func (c *RedisSeatCache) SetAvailable(ctx context.Context, eventID int, available int) error {
	key := c.getSeatsKey(eventID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]interface{}{
			"available": available,
		})
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	return err
}

func (c *RedisSeatCache) Invalidate(ctx context.Context, eventID int) error {
	return c.client.Del(ctx, c.getSeatsKey(eventID)).Err()
}
