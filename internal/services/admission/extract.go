package admission

import (
	"UniPredict/internal/domain/models"
	"UniPredict/pkg/util"
)

type matchedRecord struct {
	year    int
	hasYear bool
	cutoff  *float64
}

// match keeps records accepted by Matches, in table order. Records without a
// program cell are skipped.
func match(records []models.HistoricalRecord, query string, yearAxis bool) []matchedRecord {
	var out []matchedRecord
	for _, r := range records {
		if r.Program == nil {
			continue
		}
		if !Matches(*r.Program, query) {
			continue
		}
		m := matchedRecord{cutoff: r.Cutoff}
		if yearAxis && r.Year != nil {
			m.year, m.hasYear = util.ExtractYear(*r.Year)
		}
		out = append(out, m)
	}
	return out
}

// ExtractSeries builds the training series for a program. With a year axis,
// rows with a parsable year and a cutoff are used with the year as X. When
// none qualify, or there is no year axis, rows with a cutoff are used with
// their position as X. It returns nil when nothing usable matched.
func ExtractSeries(records []models.HistoricalRecord, query string, yearAxis bool) *models.Series {
	matched := match(records, query, yearAxis)
	if len(matched) == 0 {
		return nil
	}

	if yearAxis {
		s := &models.Series{Axis: models.AxisYear}
		for _, m := range matched {
			if m.hasYear && m.cutoff != nil {
				s.X = append(s.X, float64(m.year))
				s.Y = append(s.Y, *m.cutoff)
			}
		}
		if s.Len() > 0 {
			return s
		}
	}

	s := &models.Series{Axis: models.AxisIndex}
	for _, m := range matched {
		if m.cutoff != nil {
			s.X = append(s.X, float64(len(s.X)))
			s.Y = append(s.Y, *m.cutoff)
		}
	}
	if s.Len() == 0 {
		return nil
	}
	return s
}

// LatestCutoff returns the cutoff of the most recent matched year, or of the
// first matched row when no row carries a year. Rows without a cutoff are
// never reported.
func LatestCutoff(records []models.HistoricalRecord, query string, yearAxis bool) *models.LatestCutoff {
	matched := match(records, query, yearAxis)
	if len(matched) == 0 {
		return nil
	}

	if yearAxis {
		best := -1
		for i, m := range matched {
			if !m.hasYear || m.cutoff == nil {
				continue
			}
			if best < 0 || m.year > matched[best].year {
				best = i
			}
		}
		if best >= 0 {
			y := matched[best].year
			return &models.LatestCutoff{Value: *matched[best].cutoff, Year: &y}
		}
	}

	if first := matched[0]; first.cutoff != nil {
		return &models.LatestCutoff{Value: *first.cutoff}
	}
	return nil
}
