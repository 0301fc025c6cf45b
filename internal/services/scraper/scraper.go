package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"UniPredict/internal/domain/models"
	domrepo "UniPredict/internal/domain/repository"
	domsvc "UniPredict/internal/domain/service"
	"UniPredict/internal/service/ratelimit"
	pkghttp "UniPredict/pkg/http"
	applogger "UniPredict/pkg/logger"
)

// Fetcher downloads a page. *pkghttp.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string) (*pkghttp.Page, error)
}

// Scraper fetches configured pages and runs the extraction strategy for the
// source kind.
type Scraper struct {
	fetcher Fetcher
	limiter *ratelimit.Limiter
	l       *applogger.Logger
}

var _ domsvc.ContentScraper = (*Scraper)(nil)

func New(fetcher Fetcher, limiter *ratelimit.Limiter, l *applogger.Logger) *Scraper {
	if limiter == nil {
		limiter = ratelimit.New(0, 1)
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &Scraper{fetcher: fetcher, limiter: limiter, l: l}
}

// Scrape returns the extracted content, or an error wrapping
// repository.ErrNoContent when the page parsed but held nothing usable.
func (s *Scraper) Scrape(ctx context.Context, src models.ContentSource) (*models.Content, error) {
	u, err := url.Parse(src.URL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("source %s: invalid url '%s'", src.ID, src.URL)
	}
	if err := s.limiter.Wait(ctx, u.Host); err != nil {
		return nil, fmt.Errorf("source %s: rate limit: %w", src.ID, err)
	}

	start := time.Now()
	page, err := s.fetcher.Get(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.ID, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.ID, err)
	}

	content, err := Extract(doc, src)
	if err != nil {
		return nil, err
	}
	if content.Empty() {
		return nil, fmt.Errorf("source %s: %w", src.ID, domrepo.ErrNoContent)
	}

	s.l.Debug("page scraped",
		applogger.String("source", src.ID),
		applogger.String("kind", string(src.Kind)),
		applogger.Int("bytes", len(page.Body)),
		applogger.Duration("duration", time.Since(start)),
	)
	return content, nil
}

// Extract runs the strategy for src.Kind over an already parsed document.
func Extract(doc *goquery.Document, src models.ContentSource) (*models.Content, error) {
	switch src.Kind {
	case models.KindFeeTables:
		return extractFeeTables(doc), nil
	case models.KindFeeSections:
		return extractFeeSections(doc, src.SectionTitles), nil
	case models.KindScholarshipSection:
		return extractScholarship(doc, src.Title), nil
	case models.KindEventsAnchor:
		return extractEventsAnchor(doc), nil
	case models.KindEventsTable:
		return extractEventsTable(doc), nil
	case models.KindEventsText:
		return extractEventsText(doc), nil
	default:
		return nil, fmt.Errorf("source %s: unknown kind '%s'", src.ID, src.Kind)
	}
}
