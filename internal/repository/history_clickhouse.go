package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"UniPredict/internal/domain/models"
	domrepo "UniPredict/internal/domain/repository"
	pkgch "UniPredict/pkg/clickhouse"
	applogger "UniPredict/pkg/logger"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// MeritHistorySchema returns the DDL for the cutoff history table. seq is the
// row's position in the source sheet; index-axis series and the latest-cutoff
// fallback depend on it.
func MeritHistorySchema(table string) []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            university LowCardinality(String),
            seq        UInt32,
            program    String,
            year       Nullable(String),
            cutoff     Nullable(Float64)
        ) ENGINE = MergeTree
        ORDER BY (university, seq)
    `, table)}
}

// ClickHouseSource reads one university's rows from a shared history table.
type ClickHouseSource struct {
	db         *sql.DB
	table      string
	university string
	l          *applogger.Logger
}

var _ domrepo.HistorySource = (*ClickHouseSource)(nil)

func NewClickHouseSource(ch *pkgch.Client, table, university string, l *applogger.Logger) (*ClickHouseSource, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid clickhouse table name '%s'", table)
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &ClickHouseSource{db: ch.DB(), table: table, university: university, l: l}, nil
}

func (s *ClickHouseSource) Load(ctx context.Context) ([]models.HistoricalRecord, error) {
	start := time.Now()
	const qtpl = `
        SELECT program, year, cutoff
        FROM %s
        WHERE university = ?
        ORDER BY seq
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, s.table), s.university)
	if err != nil {
		s.l.Error("clickhouse history query error",
			applogger.String("table", s.table),
			applogger.String("university", s.university),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []models.HistoricalRecord
	for rows.Next() {
		var (
			program string
			year    sql.NullString
			cutoff  sql.NullFloat64
		)
		if err := rows.Scan(&program, &year, &cutoff); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		rec := models.HistoricalRecord{Program: &program}
		if year.Valid {
			y := year.String
			rec.Year = &y
		}
		if cutoff.Valid {
			c := cutoff.Float64
			rec.Cutoff = &c
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history rows: %w", err)
	}

	s.l.Debug("clickhouse history loaded",
		applogger.String("university", s.university),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration", time.Since(start)),
	)
	return out, nil
}
