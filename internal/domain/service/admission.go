package service

import (
	"context"

	"UniPredict/internal/domain/models"
)

// CutoffForecaster predicts a program's cutoff for the target year from its series.
// It returns nil when the series is nil or empty.
type CutoffForecaster interface {
	Forecast(series *models.Series, targetYear int) *models.Forecast
}

// ContentScraper fetches a source page and extracts its content.
type ContentScraper interface {
	Scrape(ctx context.Context, src models.ContentSource) (*models.Content, error)
}
