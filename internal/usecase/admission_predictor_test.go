package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"UniPredict/internal/domain/models"
	domrepo "UniPredict/internal/domain/repository"
	"UniPredict/internal/repository"
	"UniPredict/internal/services/admission"
)

type fakeRegistry map[string]domrepo.HistorySource

func (f fakeRegistry) Get(id string) (domrepo.HistorySource, error) {
	if src, ok := f[id]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("%s: %w", id, domrepo.ErrNoHistory)
}

type failingSource struct{}

func (failingSource) Load(context.Context) ([]models.HistoricalRecord, error) {
	return nil, errors.New("uet_merit_list.xlsx: no such file")
}

var iiuiCols = models.Columns{Program: "Discipline", Year: "Year", Cutoff: "Aggregate"}

func testProfiles() []models.UniversityProfile {
	return []models.UniversityProfile{
		{
			ID: "iiui", DisplayName: "International Islamic University Islamabad",
			Weights: map[models.Component]float64{models.ComponentMatric: 0.4, models.ComponentFSc: 0.6},
			Totals:  map[models.Component]float64{models.ComponentMatric: 1100, models.ComponentFSc: 1100},
			History: models.HistoryRef{Kind: models.HistoryInline, Columns: iiuiCols},
		},
		{
			ID: "nust", DisplayName: "NUST",
			Weights:      map[models.Component]float64{models.ComponentMatric: 0.1, models.ComponentFSc: 0.15, models.ComponentTest: 0.75},
			Totals:       map[models.Component]float64{models.ComponentMatric: 1100, models.ComponentFSc: 1100, models.ComponentTest: 200},
			RequiredTest: models.TestNET,
		},
		{
			ID: "uet", DisplayName: "University of Engineering and Technology",
			Weights:      map[models.Component]float64{models.ComponentFSc: 0.7, models.ComponentTest: 0.3},
			Totals:       map[models.Component]float64{models.ComponentFSc: 1100, models.ComponentTest: 400},
			RequiredTest: models.TestECAT,
			History:      models.HistoryRef{Kind: models.HistoryFile, Path: "uet_merit_list.xlsx"},
		},
		{
			ID: "lums", DisplayName: "Lahore University of Management Sciences",
			Weights: map[models.Component]float64{models.ComponentMatric: 0.5, models.ComponentFSc: 0.5},
			Totals:  map[models.Component]float64{models.ComponentMatric: 1100, models.ComponentFSc: 1100},
		},
	}
}

func testRegistry() fakeRegistry {
	return fakeRegistry{
		"iiui": repository.NewStaticSource([]models.Row{
			{"Discipline": "BS Computer Science", "Year": "2021", "Aggregate": "84.20"},
			{"Discipline": "BS Software Engineering", "Year": "2021", "Aggregate": "84.10"},
			{"Discipline": "BS Computer Science", "Year": "2020", "Aggregate": "83.70"},
		}, iiuiCols),
		"uet": failingSource{},
	}
}

func newPredictor(opts ...PredictorOption) *AdmissionPredictor {
	return NewAdmissionPredictor(testProfiles(), testRegistry(), admission.NewForecaster(), 2026, opts...)
}

func applicant(program string) models.ApplicantInput {
	return models.ApplicantInput{
		Matric:  990,
		FSc:     990,
		Program: program,
		Tests:   map[models.TestName]float64{models.TestECAT: 200},
	}
}

func TestPredict_Batch(t *testing.T) {
	batch, err := newPredictor().Predict(context.Background(), applicant("Computer Science"))
	require.NoError(t, err)
	assert.Equal(t, 2026, batch.TargetYear)
	assert.Nil(t, batch.UserData)
	require.Len(t, batch.Universities, 4)

	ids := []string{}
	for _, r := range batch.Universities {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"iiui", "nust", "uet", "lums"}, ids)

	iiui := batch.Universities[0]
	require.NotNil(t, iiui.UserAggregate)
	assert.InDelta(t, 90, *iiui.UserAggregate, 1e-9)
	require.NotNil(t, iiui.PredictedCutoff)
	assert.InDelta(t, 86.7, *iiui.PredictedCutoff, 1e-9)
	require.NotNil(t, iiui.Admitted)
	assert.True(t, *iiui.Admitted)
	assert.Equal(t, models.ChanceGood, iiui.AdmissionChance)
	assert.Equal(t, 84.2, *iiui.LastActualCutoff)
	assert.Equal(t, 2021, *iiui.LastActualYear)
	require.NotNil(t, iiui.BestModel)
	assert.Equal(t, models.ModelLinear, *iiui.BestModel)
	assert.NotNil(t, iiui.LinearR2)
	assert.NotNil(t, iiui.PolyR2)
	assert.Nil(t, iiui.Criteria.TestUsed)

	nust := batch.Universities[1]
	assert.Equal(t, models.Chance("NET score required"), nust.AdmissionChance)
	assert.Nil(t, nust.UserAggregate)
	assert.Nil(t, nust.PredictedCutoff)
	assert.Nil(t, nust.Admitted)
	assert.Nil(t, nust.LastActualCutoff)
	assert.Nil(t, nust.BestModel)
	require.NotNil(t, nust.Criteria.TestUsed)
	assert.Equal(t, "NET", *nust.Criteria.TestUsed)

	uet := batch.Universities[2]
	assert.Equal(t, models.ChanceUnknown, uet.AdmissionChance)
	assert.InDelta(t, 78, *uet.UserAggregate, 1e-9)
	assert.Nil(t, uet.PredictedCutoff)
	assert.Nil(t, uet.Admitted)

	lums := batch.Universities[3]
	assert.Equal(t, models.ChanceUnknown, lums.AdmissionChance)
	assert.InDelta(t, 90, *lums.UserAggregate, 1e-9)
	assert.Nil(t, lums.PredictedCutoff)
}

func TestPredict_NoProgramMatch(t *testing.T) {
	batch, err := newPredictor().Predict(context.Background(), applicant("Medicine"))
	require.NoError(t, err)

	iiui := batch.Universities[0]
	assert.Equal(t, models.ChanceUnknown, iiui.AdmissionChance)
	assert.Nil(t, iiui.PredictedCutoff)
	assert.Nil(t, iiui.LastActualCutoff)
	assert.Nil(t, iiui.BestModel)
	assert.NotNil(t, iiui.UserAggregate)
}

func TestPredict_SinglePoint(t *testing.T) {
	batch, err := newPredictor().Predict(context.Background(), applicant("Software Engineering"))
	require.NoError(t, err)

	iiui := batch.Universities[0]
	require.NotNil(t, iiui.PredictedCutoff)
	assert.InDelta(t, 84.1+0.5*5, *iiui.PredictedCutoff, 1e-9)
	assert.Equal(t, models.ModelSinglePoint, *iiui.BestModel)
	assert.Nil(t, iiui.LinearR2)
	assert.Nil(t, iiui.PolyR2)
}

func TestPredict_OLevelOverride(t *testing.T) {
	in := applicant("Computer Science")
	in.OLevel = true
	in.Matric = 810

	p := newPredictor()
	batch, err := p.Predict(context.Background(), in)
	require.NoError(t, err)

	iiui := batch.Universities[0]
	assert.Equal(t, 900.0, iiui.Criteria.Totals[models.ComponentMatric])
	assert.InDelta(t, 0.4*90+0.6*90, *iiui.UserAggregate, 1e-9)

	_, hasMatric := batch.Universities[2].Criteria.Totals[models.ComponentMatric]
	assert.False(t, hasMatric)

	// Shared profiles stay untouched.
	assert.Equal(t, 1100.0, p.profiles[0].Totals[models.ComponentMatric])
}

func TestPredict_Graduate(t *testing.T) {
	in := applicant("Computer Science")
	in.BachelorsCGPA = 3.4

	batch, err := newPredictor().Predict(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, batch.UserData)
	assert.Equal(t, 3.4, batch.UserData.BachelorsCGPA)
	assert.Equal(t, 200.0, *batch.UserData.ECATMarks)

	for _, r := range batch.Universities {
		assert.Equal(t, models.ChanceGraduate, r.AdmissionChance, r.ID)
		assert.Nil(t, r.UserAggregate)
		assert.Nil(t, r.PredictedCutoff)
	}
}

func TestPredict_AssumeZeroTests(t *testing.T) {
	batch, err := newPredictor(WithAssumeZeroTests(models.TestNET)).Predict(context.Background(), applicant("Computer Science"))
	require.NoError(t, err)

	nust := batch.Universities[1]
	assert.Equal(t, models.ChanceUnknown, nust.AdmissionChance)
	require.NotNil(t, nust.UserAggregate)
	assert.InDelta(t, 0.1*90+0.15*90, *nust.UserAggregate, 1e-9)
}

func TestPredict_Idempotent(t *testing.T) {
	p := newPredictor(WithConcurrency(1))
	in := applicant("Computer Science")

	first, err := p.Predict(context.Background(), in)
	require.NoError(t, err)
	second, err := p.Predict(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, in.Tests, 1)
}

type recordingMetrics struct {
	mu            sync.Mutex
	predictions   map[string]string
	models        []string
	historyErrors []string
	scrapes       []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{predictions: map[string]string{}}
}

func (m *recordingMetrics) RecordPrediction(university, chance string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictions[university] = chance
}

func (m *recordingMetrics) RecordForecastModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.models = append(m.models, model)
}

func (m *recordingMetrics) RecordHistoryError(university string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historyErrors = append(m.historyErrors, university)
}

func (m *recordingMetrics) RecordScrape(source, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scrapes = append(m.scrapes, source+":"+outcome)
}

func (m *recordingMetrics) RecordLatency(string, float64) {}

func TestPredict_Metrics(t *testing.T) {
	rec := newRecordingMetrics()

	_, err := newPredictor(WithPredictorMetrics(rec)).Predict(context.Background(), applicant("Computer Science"))
	require.NoError(t, err)

	assert.Equal(t, string(models.ChanceGood), rec.predictions["iiui"])
	assert.Equal(t, "NET score required", rec.predictions["nust"])
	assert.Equal(t, []string{"linear"}, rec.models)
	// Missing history is not an error; a failing load is.
	assert.Equal(t, []string{"uet"}, rec.historyErrors)
}

func TestUniversities(t *testing.T) {
	got := newPredictor().Universities()
	require.Len(t, got, 4)
	assert.Equal(t, "iiui", got[0].ID)
	assert.True(t, got[0].HasHistory)
	assert.False(t, got[3].HasHistory)
	assert.Equal(t, "ECAT", *got[2].Criteria.TestUsed)
}
