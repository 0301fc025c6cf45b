package repository

import (
	"UniPredict/internal/domain/models"
	"UniPredict/pkg/config"
)

// ProfilesFromConfig converts the validated university catalog into domain
// profiles, preserving catalog order.
func ProfilesFromConfig(unis []config.UniversityConfig) []models.UniversityProfile {
	out := make([]models.UniversityProfile, 0, len(unis))
	for _, u := range unis {
		p := models.UniversityProfile{
			ID:           u.ID,
			DisplayName:  u.Name,
			Weights:      componentMap(u.Weights),
			Totals:       componentMap(u.Totals),
			RequiredTest: models.TestName(u.RequiredTest),
		}
		if p.DisplayName == "" {
			p.DisplayName = u.ID
		}
		if h := u.History; h != nil {
			p.History = models.HistoryRef{
				Kind:  models.HistoryKind(h.Type),
				Path:  h.Path,
				Sheet: h.Sheet,
				Columns: models.Columns{
					Program: h.ProgramColumn,
					Year:    h.YearColumn,
					Cutoff:  h.CutoffColumn,
				},
			}
			if len(h.Rows) > 0 {
				p.History.Rows = make([]models.Row, 0, len(h.Rows))
				for _, r := range h.Rows {
					p.History.Rows = append(p.History.Rows, RowFromValues(r))
				}
			}
		}
		out = append(out, p)
	}
	return out
}

func componentMap(in map[string]float64) map[models.Component]float64 {
	out := make(map[models.Component]float64, len(in))
	for k, v := range in {
		out[models.Component(k)] = v
	}
	return out
}

// SourcesFromConfig converts scrape source definitions, preserving order.
func SourcesFromConfig(srcs []config.SourceConfig) []models.ContentSource {
	out := make([]models.ContentSource, 0, len(srcs))
	for _, s := range srcs {
		name := s.Name
		if name == "" {
			name = s.ID
		}
		out = append(out, models.ContentSource{
			ID:            s.ID,
			Name:          name,
			URL:           s.URL,
			Kind:          models.SourceKind(s.Kind),
			Title:         s.Title,
			SectionTitles: s.SectionTitles,
		})
	}
	return out
}
