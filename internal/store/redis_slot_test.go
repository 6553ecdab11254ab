package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisSlot on top of it
func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisSlot, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	slot := NewRedisSlot(client, ttl)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return slot, mr, cleanup
}

func TestRedisSlot_GetMissing(t *testing.T) {
	slot, _, cleanup := setupTestRedis(t, 0)
	defer cleanup()

	_, err := slot.Get(context.Background(), "nobody:products")
	assert.ErrorIs(t, err, ErrSlotEmpty)
}

func TestRedisSlot_SetThenGet(t *testing.T) {
	slot, mr, cleanup := setupTestRedis(t, 0)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, slot.Set(ctx, "s1:products", `[{"id":"a"}]`))

	stored, err := mr.Get(slotKey("s1:products"))
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, stored)

	got, err := slot.Get(ctx, "s1:products")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, got)
	assert.Equal(t, time.Duration(0), mr.TTL(slotKey("s1:products")), "zero TTL must not expire")
}

func TestRedisSlot_WithTTL(t *testing.T) {
	slot, mr, cleanup := setupTestRedis(t, 15*time.Minute)
	defer cleanup()

	require.NoError(t, slot.Set(context.Background(), "s2:products", "[]"))

	ttl := mr.TTL(slotKey("s2:products"))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl <= 20*time.Minute, "TTL should be base + max jitter")
}

func TestRedisSlot_BacksCartStore(t *testing.T) {
	slot, _, cleanup := setupTestRedis(t, 0)
	defer cleanup()
	ctx := context.Background()

	s := NewCartStore(slot, SessionKey("s3"), nil)
	require.NoError(t, s.ReplaceAll(ctx, sampleItems()))

	got, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleItems(), got)
}

func TestRedisSlot_ServerDown(t *testing.T) {
	slot, mr, cleanup := setupTestRedis(t, 0)
	defer cleanup()
	mr.Close()

	_, err := slot.Get(context.Background(), "k")
	require.ErrorContains(t, err, "redis get failed")
}

func TestSlotKey_Format(t *testing.T) {
	assert.Equal(t, "cart:products", slotKey("products"))
}
