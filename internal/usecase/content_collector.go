package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"UniPredict/internal/domain/models"
	domrepo "UniPredict/internal/domain/repository"
	domsvc "UniPredict/internal/domain/service"
	"UniPredict/pkg/cache"
	applogger "UniPredict/pkg/logger"
)

// CacheFallbackNote is attached to snapshots served from cache after a failed fetch.
const CacheFallbackNote = "Data loaded from cache due to fetch failure"

// ContentUnavailableError means the fetch failed and nothing was cached.
type ContentUnavailableError struct {
	SourceID string
	Source   string
	Err      error
}

func (e *ContentUnavailableError) Error() string {
	return fmt.Sprintf("content for %s unavailable: %v", e.SourceID, e.Err)
}

func (e *ContentUnavailableError) Unwrap() error { return e.Err }

// ContentCollector scrapes configured pages, keeps the last good result and
// falls back to it when a live fetch fails.
type ContentCollector struct {
	sources   []models.ContentSource
	byID      map[string]int
	scraper   domsvc.ContentScraper
	store     domrepo.ContentStore
	publisher domrepo.SnapshotPublisher
	metrics   domrepo.Metrics
	l         *applogger.Logger
	now       func() time.Time
}

type CollectorOption func(*ContentCollector)

func WithCollectorLogger(l *applogger.Logger) CollectorOption {
	return func(c *ContentCollector) { c.l = l }
}

func WithCollectorMetrics(m domrepo.Metrics) CollectorOption {
	return func(c *ContentCollector) { c.metrics = m }
}

// WithSnapshotPublisher ships every fresh snapshot downstream.
func WithSnapshotPublisher(p domrepo.SnapshotPublisher) CollectorOption {
	return func(c *ContentCollector) { c.publisher = p }
}

func WithCollectorClock(now func() time.Time) CollectorOption {
	return func(c *ContentCollector) { c.now = now }
}

func NewContentCollector(sources []models.ContentSource, scraper domsvc.ContentScraper, store domrepo.ContentStore, opts ...CollectorOption) *ContentCollector {
	c := &ContentCollector{
		sources: sources,
		byID:    make(map[string]int, len(sources)),
		scraper: scraper,
		store:   store,
		metrics: nopMetrics{},
		l:       applogger.NewNop(),
		now:     time.Now,
	}
	for i, s := range sources {
		c.byID[s.ID] = i
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sources lists the configured pages.
func (c *ContentCollector) Sources() []models.ContentSource {
	return c.sources
}

// Collect scrapes source id. On failure the cached snapshot is returned with
// FromCache set; without one a *ContentUnavailableError is returned.
func (c *ContentCollector) Collect(ctx context.Context, id string) (*models.ContentSnapshot, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, domrepo.ErrUnknownSource)
	}
	src := c.sources[i]

	start := time.Now()
	defer func() { c.metrics.RecordLatency("scrape", time.Since(start).Seconds()) }()

	content, err := c.scraper.Scrape(ctx, src)
	if err == nil {
		snap := &models.ContentSnapshot{
			SourceID:    src.ID,
			Source:      src.Name,
			URL:         src.URL,
			Kind:        src.Kind,
			Content:     *content,
			LastUpdated: c.now().UTC(),
		}
		c.remember(ctx, snap)
		c.metrics.RecordScrape(src.ID, "fresh")
		return snap, nil
	}

	c.l.Warn("scrape failed, trying cache",
		applogger.String("source", src.ID),
		applogger.String("url", src.URL),
		applogger.Error(err),
	)

	cached, cerr := c.store.Get(ctx, src.ID)
	if cerr != nil {
		if !errors.Is(cerr, cache.ErrCacheMiss) {
			c.l.Error("content cache read failed",
				applogger.String("source", src.ID),
				applogger.Error(cerr),
			)
		}
		c.metrics.RecordScrape(src.ID, "error")
		return nil, &ContentUnavailableError{SourceID: src.ID, Source: src.Name, Err: err}
	}

	cached.FromCache = true
	cached.Note = CacheFallbackNote
	c.metrics.RecordScrape(src.ID, "cache")
	return cached, nil
}

func (c *ContentCollector) remember(ctx context.Context, snap *models.ContentSnapshot) {
	if err := c.store.Put(ctx, snap); err != nil {
		c.l.Warn("content cache write failed",
			applogger.String("source", snap.SourceID),
			applogger.Error(err),
		)
	}
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishSnapshot(ctx, snap); err != nil {
		c.l.Warn("snapshot publish failed",
			applogger.String("source", snap.SourceID),
			applogger.Error(err),
		)
	}
}
