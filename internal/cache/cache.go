package cache

import (
	"context"
	"sync"
	"time"

	redis "github.com/go-redis/redis/v8"
)

// Cache is a byte cache with per-entry TTL. The HTTP layer uses it to
// memoize scoring responses keyed by profile id and revision.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
}

type memory struct {
	mu sync.Mutex
	m  map[string]entry
}

type entry struct {
	b   []byte
	exp time.Time
}

// NewMemory returns an in-process cache.
func NewMemory() Cache {
	return &memory{m: make(map[string]entry)}
}

func (c *memory) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[key]
	if !ok || (!e.exp.IsZero() && time.Now().After(e.exp)) {
		return nil, false
	}
	return e.b, true
}

func (c *memory) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{b: append([]byte(nil), val...)}
	if ttl > 0 {
		e.exp = time.Now().Add(ttl)
	}
	c.m[key] = e
}

const redisOpTimeout = 500 * time.Millisecond

type redisCache struct{ r *redis.Client }

// NewRedis wraps an existing Redis client. Cache misses and Redis errors
// look the same to callers; the cache is best-effort.
func NewRedis(client *redis.Client) Cache {
	return &redisCache{r: client}
}

// NewAuto returns a Redis-backed cache when addr is non-empty, otherwise an
// in-process one.
func NewAuto(addr string) Cache {
	if addr != "" {
		return NewRedis(redis.NewClient(&redis.Options{Addr: addr}))
	}
	return NewMemory()
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	v, err := c.r.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return v, true
}

func (c *redisCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	_ = c.r.Set(ctx, key, val, ttl).Err()
}
