package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"UniPredict/internal/domain/models"
	domrepo "UniPredict/internal/domain/repository"
	"UniPredict/pkg/cache"
)

const contentKeyPrefix = "content"

// CacheContentStore keeps the last good snapshot per source in a cache.Service.
type CacheContentStore struct {
	cache cache.Service
	ttl   time.Duration
}

var _ domrepo.ContentStore = (*CacheContentStore)(nil)

// NewCacheContentStore stores snapshots for ttl; zero uses the backend default.
func NewCacheContentStore(c cache.Service, ttl time.Duration) *CacheContentStore {
	return &CacheContentStore{cache: c, ttl: ttl}
}

// Get returns cache.ErrCacheMiss when the source was never stored.
func (s *CacheContentStore) Get(ctx context.Context, sourceID string) (*models.ContentSnapshot, error) {
	var snap models.ContentSnapshot
	if err := s.cache.Get(ctx, cache.GenerateKey(contentKeyPrefix, sourceID), &snap); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, err
		}
		return nil, fmt.Errorf("get snapshot %s: %w", sourceID, err)
	}
	return &snap, nil
}

func (s *CacheContentStore) Put(ctx context.Context, snap *models.ContentSnapshot) error {
	if err := s.cache.Set(ctx, cache.GenerateKey(contentKeyPrefix, snap.SourceID), snap, s.ttl); err != nil {
		return fmt.Errorf("put snapshot %s: %w", snap.SourceID, err)
	}
	return nil
}
