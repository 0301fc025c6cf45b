package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service is a key/value cache. Values are JSON encoded unless they are
// string or []byte; Get decodes into dest the same way.
// A zero expiration means the backend default.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// rawStore is implemented by every backend so the layered cache can move
// encoded bytes between levels without a decode round trip.
type rawStore interface {
	getRaw(ctx context.Context, key string) ([]byte, error)
	setRaw(ctx context.Context, key string, data []byte, expiration time.Duration) error
}

var (
	_ Service = (*MemoryCache)(nil)
	_ Service = (*RedisCache)(nil)
	_ Service = (*LayeredCache)(nil)
	_ Service = (*FileCache)(nil)
)
