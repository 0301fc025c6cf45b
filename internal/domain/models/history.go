package models

import "UniPredict/pkg/util"

// Row is one raw historical row keyed by column name. A missing key is an
// absent cell.
type Row map[string]string

// HistoricalRecord is a projected row. Nil fields are absent.
type HistoricalRecord struct {
	Program *string
	Year    *string
	Cutoff  *float64
}

// Project selects program, year and cutoff from rows using cols. Cutoff cells
// that are empty or not numeric become absent.
func Project(rows []Row, cols Columns) []HistoricalRecord {
	out := make([]HistoricalRecord, 0, len(rows))
	for _, r := range rows {
		var rec HistoricalRecord
		if v, ok := r[cols.Program]; ok {
			v := v
			rec.Program = &v
		}
		if cols.Year != "" {
			if v, ok := r[cols.Year]; ok {
				v := v
				rec.Year = &v
			}
		}
		if v, ok := r[cols.Cutoff]; ok {
			if f, ok := util.ParseFloat(v); ok {
				rec.Cutoff = &f
			}
		}
		out = append(out, rec)
	}
	return out
}

// Axis tells whether a series' X values are calendar years or row positions.
type Axis string

const (
	AxisYear  Axis = "year"
	AxisIndex Axis = "index"
)

// Series is the (X, Y) training data for one program at one university.
type Series struct {
	X    []float64
	Y    []float64
	Axis Axis
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.X)
}

// LatestCutoff is the most recent observed cutoff. Year is nil without a year axis.
type LatestCutoff struct {
	Value float64
	Year  *int
}
