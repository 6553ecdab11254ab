package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisSlot stores values under "cart:<key>". A zero baseTTL keeps
// values forever; otherwise every write gets baseTTL plus up to 4 minutes of jitter.
func NewRedisSlot(client *redis.Client, baseTTL time.Duration) *RedisSlot {
	return &RedisSlot{
		client:  client,
		baseTTL: baseTTL,
	}
}

type RedisSlot struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisSlot) Get(ctx context.Context, key string) (string, error) {
	data, err := r.client.Get(ctx, slotKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSlotEmpty
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r RedisSlot) Set(ctx context.Context, key, value string) error {
	var ttl time.Duration
	if r.baseTTL > 0 {
		jitter := time.Duration(rand.Intn(5)) * time.Minute
		ttl = r.baseTTL + jitter
	}

	if err := r.client.Set(ctx, slotKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func slotKey(key string) string {
	return fmt.Sprintf("cart:%s", key)
}
