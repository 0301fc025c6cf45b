package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"UniPredict/internal/domain/models"
	domrepo "UniPredict/internal/domain/repository"
	"UniPredict/internal/repository"
	"UniPredict/pkg/cache"
)

type fakeScraper struct {
	content *models.Content
	err     error
	calls   int
}

func (f *fakeScraper) Scrape(_ context.Context, _ models.ContentSource) (*models.Content, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.content, nil
}

type fakePublisher struct {
	published []*models.ContentSnapshot
	err       error
}

func (f *fakePublisher) PublishSnapshot(_ context.Context, snap *models.ContentSnapshot) error {
	f.published = append(f.published, snap)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

var testSources = []models.ContentSource{
	{ID: "uet_fee", Name: "UET Lahore", URL: "https://example.test/uet", Kind: models.KindFeeTables},
	{ID: "ned_events", Name: "NEDUET Events", URL: "https://example.test/ned", Kind: models.KindEventsText},
}

func newCollector(t *testing.T, s *fakeScraper, opts ...CollectorOption) *ContentCollector {
	t.Helper()
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	return NewContentCollector(testSources, s, repository.NewCacheContentStore(mem, time.Hour), opts...)
}

func TestCollect_Fresh(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	scr := &fakeScraper{content: &models.Content{Rows: []map[string]string{{"Program": "BSc Eng", "Fee": "95,000"}}}}
	pub := &fakePublisher{}
	rec := newRecordingMetrics()
	c := newCollector(t, scr,
		WithSnapshotPublisher(pub),
		WithCollectorMetrics(rec),
		WithCollectorClock(func() time.Time { return at }),
	)

	snap, err := c.Collect(context.Background(), "uet_fee")
	require.NoError(t, err)
	assert.False(t, snap.FromCache)
	assert.Empty(t, snap.Note)
	assert.Equal(t, "UET Lahore", snap.Source)
	assert.Equal(t, at, snap.LastUpdated)
	assert.Len(t, snap.Content.Rows, 1)
	require.Len(t, pub.published, 1)
	assert.Equal(t, "uet_fee", pub.published[0].SourceID)
	assert.Equal(t, []string{"uet_fee:fresh"}, rec.scrapes)
}

func TestCollect_FallsBackToCache(t *testing.T) {
	scr := &fakeScraper{content: &models.Content{Events: []models.Event{{Title: "IEEE Week"}}}}
	rec := newRecordingMetrics()
	c := newCollector(t, scr, WithCollectorMetrics(rec))
	ctx := context.Background()

	fresh, err := c.Collect(ctx, "ned_events")
	require.NoError(t, err)

	scr.err = errors.New("timeout")
	snap, err := c.Collect(ctx, "ned_events")
	require.NoError(t, err)
	assert.True(t, snap.FromCache)
	assert.Equal(t, CacheFallbackNote, snap.Note)
	assert.Equal(t, fresh.Content, snap.Content)
	assert.True(t, fresh.LastUpdated.Equal(snap.LastUpdated))
	assert.Equal(t, []string{"ned_events:fresh", "ned_events:cache"}, rec.scrapes)
}

func TestCollect_UnavailableWithoutCache(t *testing.T) {
	scr := &fakeScraper{err: domrepo.ErrNoContent}
	c := newCollector(t, scr)

	_, err := c.Collect(context.Background(), "uet_fee")
	var unavailable *ContentUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "UET Lahore", unavailable.Source)
	assert.ErrorIs(t, err, domrepo.ErrNoContent)
}

func TestCollect_UnknownSource(t *testing.T) {
	scr := &fakeScraper{}
	c := newCollector(t, scr)

	_, err := c.Collect(context.Background(), "mit_fee")
	assert.ErrorIs(t, err, domrepo.ErrUnknownSource)
	assert.Equal(t, 0, scr.calls)
}

func TestCollect_PublishFailureIsNotFatal(t *testing.T) {
	scr := &fakeScraper{content: &models.Content{Paragraphs: []string{"Need based aid"}}}
	c := newCollector(t, scr, WithSnapshotPublisher(&fakePublisher{err: errors.New("broker down")}))

	snap, err := c.Collect(context.Background(), "uet_fee")
	require.NoError(t, err)
	assert.False(t, snap.FromCache)
}

func TestSources(t *testing.T) {
	c := newCollector(t, &fakeScraper{})
	assert.Equal(t, testSources, c.Sources())
}
