package repository

import (
	"context"
	"errors"

	"UniPredict/internal/domain/models"
)

var (
	ErrNoHistory         = errors.New("no historical data source")
	ErrUnknownUniversity = errors.New("unknown university")
	ErrUnknownSource     = errors.New("unknown content source")
	ErrNoContent         = errors.New("no content found on page")
)

// HistorySource returns one university's historical cutoff rows. Rows are read
// fresh on every call.
type HistorySource interface {
	Load(ctx context.Context) ([]models.HistoricalRecord, error)
}

// HistoryRegistry resolves the source for a university. It returns
// ErrNoHistory when the university has none configured.
type HistoryRegistry interface {
	Get(universityID string) (HistorySource, error)
}

// ContentStore keeps the last good snapshot per source.
type ContentStore interface {
	Get(ctx context.Context, sourceID string) (*models.ContentSnapshot, error)
	Put(ctx context.Context, snap *models.ContentSnapshot) error
}

// SnapshotPublisher ships fresh snapshots downstream.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, snap *models.ContentSnapshot) error
	Close() error
}

type Metrics interface {
	RecordPrediction(university, chance string)
	RecordForecastModel(model string)
	RecordHistoryError(university string)
	RecordScrape(source, outcome string)
	RecordLatency(op string, seconds float64)
}
