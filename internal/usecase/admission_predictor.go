package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"UniPredict/internal/domain/models"
	domrepo "UniPredict/internal/domain/repository"
	domsvc "UniPredict/internal/domain/service"
	"UniPredict/internal/services/admission"
	applogger "UniPredict/pkg/logger"
)

// DefaultOLevelMatricTotal replaces the matric total for O/A-level applicants.
const DefaultOLevelMatricTotal = 900

// AdmissionPredictor runs the per-university pipeline for one applicant:
// aggregate, history, series, forecast, classification.
type AdmissionPredictor struct {
	profiles    []models.UniversityProfile
	history     domrepo.HistoryRegistry
	forecaster  domsvc.CutoffForecaster
	targetYear  int
	oLevelTotal float64
	assumeZero  []models.TestName
	concurrency int
	metrics     domrepo.Metrics
	l           *applogger.Logger
}

type PredictorOption func(*AdmissionPredictor)

func WithPredictorLogger(l *applogger.Logger) PredictorOption {
	return func(p *AdmissionPredictor) { p.l = l }
}

func WithPredictorMetrics(m domrepo.Metrics) PredictorOption {
	return func(p *AdmissionPredictor) { p.metrics = m }
}

// WithOLevelMatricTotal overrides the matric total used for O/A-level applicants.
func WithOLevelMatricTotal(total float64) PredictorOption {
	return func(p *AdmissionPredictor) { p.oLevelTotal = total }
}

// WithAssumeZeroTests treats an absent score for any of tests as 0 instead of
// short-circuiting with "score required".
func WithAssumeZeroTests(tests ...models.TestName) PredictorOption {
	return func(p *AdmissionPredictor) { p.assumeZero = append(p.assumeZero, tests...) }
}

// WithConcurrency bounds how many universities are evaluated at once.
func WithConcurrency(n int) PredictorOption {
	return func(p *AdmissionPredictor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// NewAdmissionPredictor keeps profiles as given; their order is the output order.
func NewAdmissionPredictor(
	profiles []models.UniversityProfile,
	history domrepo.HistoryRegistry,
	forecaster domsvc.CutoffForecaster,
	targetYear int,
	opts ...PredictorOption,
) *AdmissionPredictor {
	p := &AdmissionPredictor{
		profiles:    profiles,
		history:     history,
		forecaster:  forecaster,
		targetYear:  targetYear,
		oLevelTotal: DefaultOLevelMatricTotal,
		concurrency: 4,
		metrics:     nopMetrics{},
		l:           applogger.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *AdmissionPredictor) TargetYear() int { return p.targetYear }

// Universities returns the configured profiles in output order.
func (p *AdmissionPredictor) Universities() []models.UniversitySummary {
	out := make([]models.UniversitySummary, 0, len(p.profiles))
	for i := range p.profiles {
		prof := &p.profiles[i]
		out = append(out, models.UniversitySummary{
			ID:         prof.ID,
			Name:       prof.DisplayName,
			Criteria:   models.NewCriteria(prof, prof.TotalsCopy()),
			HasHistory: prof.HasHistory(),
		})
	}
	return out
}

// Predict returns one row per configured university. Per-university failures
// degrade that row only; the batch itself never fails on data problems.
func (p *AdmissionPredictor) Predict(ctx context.Context, in models.ApplicantInput) (*models.PredictionBatch, error) {
	start := time.Now()
	defer func() { p.metrics.RecordLatency("predict", time.Since(start).Seconds()) }()

	in = p.withAssumedScores(in)
	batch := &models.PredictionBatch{
		TargetYear:   p.targetYear,
		Universities: make([]models.PredictionResult, len(p.profiles)),
	}
	graduate := in.IsGraduate()
	if graduate {
		batch.UserData = models.NewUserData(&in)
	}

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for i := range p.profiles {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			batch.Universities[i] = p.predictOne(ctx, &p.profiles[i], &in, graduate)
		}(i)
	}
	wg.Wait()

	for _, r := range batch.Universities {
		p.metrics.RecordPrediction(r.ID, string(r.AdmissionChance))
	}
	return batch, nil
}

// withAssumedScores returns a copy of in with zero scores filled in.
func (p *AdmissionPredictor) withAssumedScores(in models.ApplicantInput) models.ApplicantInput {
	tests := make(map[models.TestName]float64, len(in.Tests)+len(p.assumeZero))
	for k, v := range in.Tests {
		tests[k] = v
	}
	for _, t := range p.assumeZero {
		if _, ok := tests[t]; !ok {
			tests[t] = 0
		}
	}
	in.Tests = tests
	return in
}

func (p *AdmissionPredictor) predictOne(ctx context.Context, prof *models.UniversityProfile, in *models.ApplicantInput, graduate bool) models.PredictionResult {
	totals := prof.TotalsCopy()
	if _, ok := totals[models.ComponentMatric]; ok && in.OLevel {
		totals[models.ComponentMatric] = p.oLevelTotal
	}

	res := models.PredictionResult{
		ID:       prof.ID,
		Name:     prof.DisplayName,
		Criteria: models.NewCriteria(prof, totals),
	}
	if graduate {
		res.AdmissionChance = models.ChanceGraduate
		return res
	}

	var test *float64
	if prof.RequiredTest != models.TestNone {
		score, ok := in.TestScore(prof.RequiredTest)
		if !ok {
			res.AdmissionChance = models.ScoreRequired(prof.RequiredTest)
			return res
		}
		test = &score
	}

	agg := admission.Aggregate(in.Matric, in.FSc, test, totals, prof.Weights)
	aggRounded := admission.Round2(agg)
	res.UserAggregate = &aggRounded
	res.AdmissionChance = models.ChanceUnknown

	records, ok := p.loadHistory(ctx, prof)
	if !ok {
		return res
	}

	yearAxis := prof.History.Columns.Year != ""
	if latest := admission.LatestCutoff(records, in.Program, yearAxis); latest != nil {
		v := latest.Value
		res.LastActualCutoff = &v
		res.LastActualYear = latest.Year
	}

	fc := p.forecaster.Forecast(admission.ExtractSeries(records, in.Program, yearAxis), p.targetYear)
	if fc == nil {
		return res
	}
	p.metrics.RecordForecastModel(string(fc.Model))
	p.l.Debug("cutoff forecast",
		applogger.String("university", prof.ID),
		applogger.String("program", in.Program),
		applogger.String("model", string(fc.Model)),
		applogger.Float64("value", fc.Value),
	)

	predicted := fc.Value
	rounded := admission.Round2(predicted)
	admitted := agg >= predicted
	model := fc.Model
	res.PredictedCutoff = &rounded
	res.Admitted = &admitted
	res.AdmissionChance = admission.Classify(agg, &predicted)
	res.LinearR2 = fc.LinearR2
	res.PolyR2 = fc.PolyR2
	res.BestModel = &model
	return res
}

// loadHistory reports false when the university has no usable history.
func (p *AdmissionPredictor) loadHistory(ctx context.Context, prof *models.UniversityProfile) ([]models.HistoricalRecord, bool) {
	src, err := p.history.Get(prof.ID)
	if err != nil {
		if !errors.Is(err, domrepo.ErrNoHistory) {
			p.metrics.RecordHistoryError(prof.ID)
			p.l.Warn("history source lookup failed",
				applogger.String("university", prof.ID),
				applogger.Error(err),
			)
		}
		return nil, false
	}

	records, err := src.Load(ctx)
	if err != nil {
		p.metrics.RecordHistoryError(prof.ID)
		p.l.Warn("history load failed, continuing without prediction",
			applogger.String("university", prof.ID),
			applogger.Error(err),
		)
		return nil, false
	}
	return records, true
}

type nopMetrics struct{}

func (nopMetrics) RecordPrediction(string, string) {}
func (nopMetrics) RecordForecastModel(string) {}
func (nopMetrics) RecordHistoryError(string) {}
func (nopMetrics) RecordScrape(string, string) {}
func (nopMetrics) RecordLatency(string, float64) {}
