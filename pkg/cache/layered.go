package cache

import (
	"context"
	"time"
)

// LayeredCache is a two-level cache: a bounded memory L1 in front of a shared L2.
type LayeredCache struct {
	mem    *MemoryCache
	l2     Service
	l2raw  rawStore
	memTTL time.Duration
}

// NewLayeredCache creates a layered cache over l2 (usually a *RedisCache).
func NewLayeredCache(l2 Service, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		MemoryMaxSize: 1000,
		MemoryTTL:     5 * time.Minute,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	raw, _ := l2.(rawStore)
	return &LayeredCache{
		mem:    NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize), WithMemoryTTL(cfg.MemoryTTL)),
		l2:     l2,
		l2raw:  raw,
		memTTL: cfg.MemoryTTL,
	}
}

// Set writes through: L2 first, then memory.
func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if lc.l2raw != nil {
		err = lc.l2raw.setRaw(ctx, key, data, expiration)
	} else {
		err = lc.l2.Set(ctx, key, data, expiration)
	}
	if err != nil {
		return err
	}
	_ = lc.mem.setRaw(ctx, key, data, lc.l1TTL(expiration))
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if data, err := lc.mem.getRaw(ctx, key); err == nil {
		return decode(data, dest)
	}

	var data []byte
	var err error
	if lc.l2raw != nil {
		data, err = lc.l2raw.getRaw(ctx, key)
	} else {
		err = lc.l2.Get(ctx, key, &data)
	}
	if err != nil {
		return err
	}

	_ = lc.mem.setRaw(ctx, key, data, lc.memTTL)
	return decode(data, dest)
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.mem.Delete(ctx, keys...)
	return lc.l2.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, key string) (bool, error) {
	if ok, _ := lc.mem.Exists(ctx, key); ok {
		return true, nil
	}
	return lc.l2.Exists(ctx, key)
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.mem.Close()
	return lc.l2.Close()
}

func (lc *LayeredCache) l1TTL(expiration time.Duration) time.Duration {
	if expiration > 0 && expiration < lc.memTTL {
		return expiration
	}
	return lc.memTTL
}
