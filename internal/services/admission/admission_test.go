package admission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"UniPredict/internal/domain/models"
)

func str(s string) *string { return &s }
func num(f float64) *float64 { return &f }

func rec(program, year string, cutoff *float64) models.HistoricalRecord {
	r := models.HistoricalRecord{Program: str(program), Cutoff: cutoff}
	if year != "" {
		r.Year = str(year)
	}
	return r
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Normalize("BS Computer Science"), Normalize("Computer Science"))
	assert.Equal(t, "computer", Normalize("BS Computer Science"))
	assert.Equal(t, "software engineering", Normalize("BSc in Software Engineering"))
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("  BS  "))
	// Only whole words are removed.
	assert.Equal(t, "data sciences (ds)", Normalize("Data Sciences (DS)"))
	assert.Equal(t, "business", Normalize("Business"))
}

func TestMatches(t *testing.T) {
	assert.True(t, Matches("Computer Science and Info", "BS Computer Science"))
	assert.True(t, Matches("Data Sciences (DS)", "Data Science"))
	assert.False(t, Matches("Electrical Engineering", "Computer Science"))
	// An empty normalized query matches everything.
	assert.True(t, Matches("Anything", "BS"))
}

func TestExtractSeries_SelectsWhatMatchesAccepts(t *testing.T) {
	records := []models.HistoricalRecord{
		rec("Data Sciences (DS)", "2023", num(83.73)),
		rec("BS Computer Science", "2023", num(84.20)),
		rec("Data Science & AI", "2022", num(82.10)),
		rec("Electrical Engineering", "2022", num(80.00)),
	}
	for _, query := range []string{"Data Science", "BS Computer Science", "BS", "Civil"} {
		var want []float64
		for _, r := range records {
			if Matches(*r.Program, query) {
				want = append(want, *r.Cutoff)
			}
		}
		s := ExtractSeries(records, query, true)
		if len(want) == 0 {
			assert.Nil(t, s, query)
			continue
		}
		require.NotNil(t, s, query)
		assert.Equal(t, want, s.Y, query)
	}
}

func iiuiRecords() []models.HistoricalRecord {
	return []models.HistoricalRecord{
		rec("BS Computer Science", "2021", num(84.20)),
		rec("BS Software Engineering", "2021", num(84.10)),
		rec("BE Electrical Engineering", "2021", num(83.60)),
		rec("BS Computer Science", "2020", num(83.70)),
		rec("BS Software Engineering", "2020", num(83.60)),
	}
}

func TestExtractSeries_YearAxis(t *testing.T) {
	s := ExtractSeries(iiuiRecords(), "Computer Science", true)
	require.NotNil(t, s)
	assert.Equal(t, models.AxisYear, s.Axis)
	assert.Equal(t, []float64{2021, 2020}, s.X)
	assert.Equal(t, []float64{84.20, 83.70}, s.Y)
}

func TestExtractSeries_SingleYear(t *testing.T) {
	s := ExtractSeries(iiuiRecords(), "Electrical", true)
	require.NotNil(t, s)
	assert.Equal(t, []float64{2021}, s.X)
	assert.Equal(t, []float64{83.60}, s.Y)
}

func TestExtractSeries_YearParsing(t *testing.T) {
	records := []models.HistoricalRecord{
		rec("Computer Science", "Fall 2,022", num(80)),
		rec("Computer Science", "2023-24", num(81)),
		rec("Computer Science", "unknown", num(99)),
	}
	s := ExtractSeries(records, "computer science", true)
	require.NotNil(t, s)
	assert.Equal(t, []float64{2022, 2023}, s.X)
	assert.Equal(t, []float64{80, 81}, s.Y)
}

func TestExtractSeries_FallsBackToIndex(t *testing.T) {
	records := []models.HistoricalRecord{
		rec("Computer Science", "N/A", num(70)),
		rec("Computer Science", "", num(72)),
		rec("Computer Science", "TBD", nil),
		rec("Computer Science", "n.d.", num(74)),
	}
	s := ExtractSeries(records, "Computer Science", true)
	require.NotNil(t, s)
	assert.Equal(t, models.AxisIndex, s.Axis)
	assert.Equal(t, []float64{0, 1, 2}, s.X)
	assert.Equal(t, []float64{70, 72, 74}, s.Y)
}

func TestExtractSeries_NoYearAxis(t *testing.T) {
	records := []models.HistoricalRecord{
		rec("Computer Science", "", num(88.5)),
		rec("Software Engineering", "", num(87.1)),
	}
	s := ExtractSeries(records, "Computer Science", false)
	require.NotNil(t, s)
	assert.Equal(t, models.AxisIndex, s.Axis)
	assert.Equal(t, []float64{0}, s.X)
	assert.Equal(t, []float64{88.5}, s.Y)
}

func TestExtractSeries_Absent(t *testing.T) {
	assert.Nil(t, ExtractSeries(iiuiRecords(), "Medicine", true))
	assert.Nil(t, ExtractSeries(nil, "Computer Science", true))

	noCutoffs := []models.HistoricalRecord{rec("Computer Science", "2021", nil)}
	assert.Nil(t, ExtractSeries(noCutoffs, "Computer Science", true))

	noProgram := []models.HistoricalRecord{{Year: str("2021"), Cutoff: num(80)}}
	assert.Nil(t, ExtractSeries(noProgram, "", true))
}

func TestLatestCutoff(t *testing.T) {
	ned := []models.HistoricalRecord{
		rec("Data Sciences (DS)", "2024", nil),
		rec("Data Sciences (DS)", "2023", num(83.73)),
		rec("Data Sciences (DS)", "2022", num(88.40)),
	}
	got := LatestCutoff(ned, "Data Sciences", true)
	require.NotNil(t, got)
	assert.Equal(t, 83.73, got.Value)
	require.NotNil(t, got.Year)
	assert.Equal(t, 2023, *got.Year)

	got = LatestCutoff(iiuiRecords(), "Software Engineering", false)
	require.NotNil(t, got)
	assert.Equal(t, 84.10, got.Value)
	assert.Nil(t, got.Year)

	assert.Nil(t, LatestCutoff(iiuiRecords(), "Law", true))
}

func TestForecast_SinglePointYear(t *testing.T) {
	f := NewForecaster()
	got := f.Forecast(&models.Series{X: []float64{2023}, Y: []float64{80}, Axis: models.AxisYear}, 2026)
	require.NotNil(t, got)
	assert.Equal(t, 80+0.5*3, got.Value)
	assert.Equal(t, models.ModelSinglePoint, got.Model)
	assert.Nil(t, got.LinearR2)
	assert.Nil(t, got.PolyR2)
}

func TestForecast_SinglePointIndexUsesReferenceYear(t *testing.T) {
	got := NewForecaster().Forecast(&models.Series{X: []float64{0}, Y: []float64{80}}, 2026)
	require.NotNil(t, got)
	assert.Equal(t, 82.5, got.Value)

	got = NewForecaster(WithReferenceYear(2024)).Forecast(&models.Series{X: []float64{0}, Y: []float64{80}}, 2026)
	assert.Equal(t, 81.0, got.Value)
}

func TestSinglePointTrends(t *testing.T) {
	assert.Equal(t, 81.5, SinglePoint(80, 2026, 2023, TrendIncreasing))
	assert.InDelta(t, 79.1, SinglePoint(80, 2026, 2023, TrendDecreasing), 1e-9)
	assert.Equal(t, 80.0, SinglePoint(80, 2026, 2023, TrendStable))
}

func TestForecast_LinearSeries(t *testing.T) {
	s := &models.Series{X: []float64{2020, 2021, 2022, 2023}, Y: []float64{80, 81, 82, 83}, Axis: models.AxisYear}
	got := NewForecaster().Forecast(s, 2026)
	require.NotNil(t, got)
	assert.Equal(t, models.ModelLinear, got.Model)
	assert.InDelta(t, 86, got.Value, 1e-6)
	require.NotNil(t, got.LinearR2)
	assert.InDelta(t, 1, *got.LinearR2, 1e-9)
}

func TestForecast_QuadraticSeriesPicksPolynomial(t *testing.T) {
	s := &models.Series{
		X:    []float64{2019, 2020, 2021, 2022, 2023},
		Y:    []float64{70, 71, 74, 79, 86},
		Axis: models.AxisYear,
	}
	got := NewForecaster().Forecast(s, 2026)
	require.NotNil(t, got)
	assert.Equal(t, models.ModelPolynomial, got.Model)
	assert.InDelta(t, 119, got.Value, 1e-4)
	assert.Greater(t, *got.PolyR2, *got.LinearR2)
	assert.InDelta(t, 1, *got.PolyR2, 1e-9)
}

func TestForecast_TwoPointsTieGoesLinear(t *testing.T) {
	s := &models.Series{X: []float64{2020, 2022}, Y: []float64{80, 84}, Axis: models.AxisYear}
	got := NewForecaster().Forecast(s, 2026)
	require.NotNil(t, got)
	assert.Equal(t, models.ModelLinear, got.Model)
	assert.InDelta(t, 92, got.Value, 1e-6)
}

func TestForecast_IndexAxisInput(t *testing.T) {
	s := &models.Series{X: []float64{0, 1, 2}, Y: []float64{10, 12, 14}, Axis: models.AxisIndex}

	got := NewForecaster().Forecast(s, 2026)
	require.NotNil(t, got)
	assert.InDelta(t, 16, got.Value, 1e-9)

	got = NewForecaster(WithIndexPolicy(IndexTargetOffset)).Forecast(s, 2026)
	assert.InDelta(t, 24, got.Value, 1e-9)
}

func TestForecast_RepeatedX(t *testing.T) {
	s := &models.Series{X: []float64{2021, 2021}, Y: []float64{80, 82}, Axis: models.AxisYear}
	got := NewForecaster().Forecast(s, 2026)
	require.NotNil(t, got)
	assert.Equal(t, models.ModelLinear, got.Model)
	assert.InDelta(t, 81, got.Value, 1e-9)
	assert.InDelta(t, 0, *got.LinearR2, 1e-9)
}

func TestForecast_Empty(t *testing.T) {
	assert.Nil(t, NewForecaster().Forecast(nil, 2026))
	assert.Nil(t, NewForecaster().Forecast(&models.Series{}, 2026))
}

func TestRSquaredConstantTarget(t *testing.T) {
	assert.Equal(t, 1.0, rSquared([]float64{5, 5}, []float64{5, 5}))
	assert.Equal(t, 0.0, rSquared([]float64{4, 6}, []float64{5, 5}))
}

func TestAggregate(t *testing.T) {
	full := map[models.Component]float64{models.ComponentMatric: 1100, models.ComponentFSc: 1100, models.ComponentTest: 100}
	weights := map[models.Component]float64{models.ComponentMatric: 0.1, models.ComponentFSc: 0.4, models.ComponentTest: 0.5}

	assert.InDelta(t, 100.0, Aggregate(1100, 1100, num(100), full, weights), 1e-9)

	// Missing test score contributes nothing.
	assert.InDelta(t, 50.0, Aggregate(1100, 1100, nil, full, weights), 1e-9)

	// Components without a total contribute nothing.
	noTest := map[models.Component]float64{models.ComponentMatric: 1100, models.ComponentFSc: 1100}
	assert.InDelta(t, 50.0, Aggregate(1100, 1100, num(100), noTest, weights), 1e-9)

	// Weights are not normalized.
	ones := map[models.Component]float64{models.ComponentMatric: 1, models.ComponentFSc: 1, models.ComponentTest: 1}
	assert.InDelta(t, 300.0, Aggregate(1100, 1100, num(100), full, ones), 1e-9)
}

func TestClassify(t *testing.T) {
	// 90 clears 80*1.1.
	assert.Equal(t, models.ChanceHigh, Classify(90, num(80)))
	assert.Equal(t, models.ChanceGood, Classify(85, num(80)))
	assert.Equal(t, models.ChanceHigh, Classify(88.01, num(80)))
	assert.Equal(t, models.ChanceGood, Classify(87.99, num(80)))
	assert.Equal(t, models.ChanceHigh, Classify(100, num(80)))
	assert.Equal(t, models.ChancePossible, Classify(75, num(80)))
	assert.Equal(t, models.ChanceLow, Classify(60, num(80)))
	assert.Equal(t, models.ChanceGood, Classify(80, num(80)))
	assert.Equal(t, models.ChanceUnknown, Classify(99, nil))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 81.23, Round2(81.2345))
	assert.Equal(t, 81.24, Round2(81.2351))
	assert.Equal(t, -1.5, Round2(-1.5))
}
