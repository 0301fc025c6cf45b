package repository

import (
	"context"

	"UniPredict/internal/domain/models"
	domrepo "UniPredict/internal/domain/repository"
)

// StaticSource serves a hand-maintained table kept in configuration.
type StaticSource struct {
	rows []models.Row
	cols models.Columns
}

var _ domrepo.HistorySource = (*StaticSource)(nil)

func NewStaticSource(rows []models.Row, cols models.Columns) *StaticSource {
	return &StaticSource{rows: rows, cols: cols}
}

func (s *StaticSource) Load(_ context.Context) ([]models.HistoricalRecord, error) {
	return models.Project(s.rows, s.cols), nil
}
