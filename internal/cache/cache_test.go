package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "k", []byte("v"), 0)
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	c.Set(ctx, "k", []byte("v"), time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCacheCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	val := []byte("original")
	c.Set(ctx, "k", val, 0)
	val[0] = 'X'

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("original"), got)
}

func TestRedisCacheGetHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db)

	mock.ExpectGet("score:abc").SetVal("cached")

	got, ok := c.Get(context.Background(), "score:abc")
	require.True(t, ok)
	assert.Equal(t, []byte("cached"), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheGetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db)

	mock.ExpectGet("score:abc").RedisNil()

	_, ok := c.Get(context.Background(), "score:abc")
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheSet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedis(db)

	mock.ExpectSet("score:abc", []byte("body"), time.Minute).SetVal("OK")

	c.Set(context.Background(), "score:abc", []byte("body"), time.Minute)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewAuto(t *testing.T) {
	assert.IsType(t, &memory{}, NewAuto(""))
	assert.IsType(t, &redisCache{}, NewAuto("localhost:6379"))
}
