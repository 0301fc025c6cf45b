package admission

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"UniPredict/internal/domain/models"
	domsvc "UniPredict/internal/domain/service"
)

// Trend is the assumed direction of cutoffs when only one observation exists.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// IndexPolicy chooses the prediction input for series indexed by row position.
type IndexPolicy string

const (
	// IndexNext predicts one step past the last observed index.
	IndexNext IndexPolicy = "next_index"
	// IndexTargetOffset treats the last index as the reference year and steps
	// forward to the target year.
	IndexTargetOffset IndexPolicy = "target_offset"
)

// Single-point heuristics, in cutoff points per year.
const (
	IncreasingStepPerYear = 0.5
	DecreasingStepPerYear = 0.3
)

// DefaultReferenceYear stands in for the observation year of a single point
// that carries no calendar year.
const DefaultReferenceYear = 2021

// plausibleYear separates calendar years from row indexes on the X axis.
const plausibleYear = 1900

// r2Tolerance keeps the polynomial from winning on rounding noise.
const r2Tolerance = 1e-12

// Forecaster fits linear and quadratic models to a cutoff series and keeps
// whichever explains the series better.
type Forecaster struct {
	trend         Trend
	referenceYear int
	indexPolicy   IndexPolicy
}

type ForecasterOption func(*Forecaster)

func WithTrend(t Trend) ForecasterOption {
	return func(f *Forecaster) { f.trend = t }
}

func WithReferenceYear(y int) ForecasterOption {
	return func(f *Forecaster) { f.referenceYear = y }
}

func WithIndexPolicy(p IndexPolicy) ForecasterOption {
	return func(f *Forecaster) { f.indexPolicy = p }
}

func NewForecaster(opts ...ForecasterOption) *Forecaster {
	f := &Forecaster{
		trend:         TrendIncreasing,
		referenceYear: DefaultReferenceYear,
		indexPolicy:   IndexNext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ domsvc.CutoffForecaster = (*Forecaster)(nil)

// Forecast predicts the cutoff for targetYear. Values are not clamped.
func (f *Forecaster) Forecast(series *models.Series, targetYear int) *models.Forecast {
	n := series.Len()
	if n == 0 {
		return nil
	}

	if n == 1 {
		current := f.referenceYear
		if series.X[0] > plausibleYear {
			current = int(series.X[0])
		}
		return &models.Forecast{
			Value: SinglePoint(series.Y[0], targetYear, current, f.trend),
			Model: models.ModelSinglePoint,
		}
	}

	input := f.predictionInput(series, targetYear)

	lin := fitLinear(series.X, series.Y)
	poly := fitQuadratic(series.X, series.Y)
	linR2 := rSquared(predictAll(lin, series.X), series.Y)
	polyR2 := rSquared(predictAll(poly, series.X), series.Y)

	out := &models.Forecast{LinearR2: &linR2, PolyR2: &polyR2}
	if polyR2 > linR2+r2Tolerance {
		out.Model = models.ModelPolynomial
		out.Value = poly.predict(input)
	} else {
		out.Model = models.ModelLinear
		out.Value = lin.predict(input)
	}
	return out
}

func (f *Forecaster) predictionInput(series *models.Series, targetYear int) float64 {
	if stat.Mean(series.X, nil) > plausibleYear {
		return float64(targetYear)
	}
	n := float64(series.Len())
	if f.indexPolicy == IndexTargetOffset {
		return (n - 1) + float64(targetYear-f.referenceYear)
	}
	return n
}

// SinglePoint extrapolates one observation from currentYear to targetYear.
func SinglePoint(y float64, targetYear, currentYear int, trend Trend) float64 {
	years := float64(targetYear - currentYear)
	switch trend {
	case TrendIncreasing:
		return y + years*IncreasingStepPerYear
	case TrendDecreasing:
		return y - years*DecreasingStepPerYear
	default:
		return y
	}
}

// curve is a fitted model that can be evaluated at any X.
type curve interface {
	predict(x float64) float64
}

func predictAll(c curve, xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = c.predict(x)
	}
	return out
}

type line struct{ intercept, slope float64 }

func (l line) predict(x float64) float64 { return l.intercept + l.slope*x }

func fitLinear(xs, ys []float64) line {
	if stat.Variance(xs, nil) > 0 {
		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		return line{alpha, beta}
	}
	// Constant X: the minimum-norm solution has zero slope.
	return line{intercept: stat.Mean(ys, nil)}
}

// quadratic is y = my + c1*(x-mx) + c2*(x^2-mx2), kept centered so large
// calendar years do not cancel out.
type quadratic struct {
	mx, mx2, my float64
	c1, c2      float64
}

func (q quadratic) predict(x float64) float64 {
	return q.my + q.c1*(x-q.mx) + q.c2*(x*x-q.mx2)
}

// fitQuadratic fits y = c0 + c1*x + c2*x^2 by least squares on mean-centered
// features. Rank-deficient systems (two points, repeated X) take the
// minimum-norm coefficients.
func fitQuadratic(xs, ys []float64) quadratic {
	n := len(xs)
	x2 := make([]float64, n)
	for i, x := range xs {
		x2[i] = x * x
	}
	q := quadratic{mx: stat.Mean(xs, nil), mx2: stat.Mean(x2, nil), my: stat.Mean(ys, nil)}

	a := mat.NewDense(n, 2, nil)
	b := mat.NewVecDense(n, nil)
	for i := range xs {
		a.Set(i, 0, xs[i]-q.mx)
		a.Set(i, 1, x2[i]-q.mx2)
		b.SetVec(i, ys[i]-q.my)
	}

	coef := leastSquares(a, b)
	q.c1, q.c2 = coef[0], coef[1]
	return q
}

// leastSquares solves min ||a*x - b|| via SVD, truncating singular values
// below the machine-precision cutoff.
func leastSquares(a *mat.Dense, b *mat.VecDense) []float64 {
	r, c := a.Dims()
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return make([]float64, c)
	}
	eps := math.Nextafter(1, 2) - 1
	rank := svd.Rank(eps * float64(max(r, c)))
	if rank == 0 {
		return make([]float64, c)
	}
	var x mat.VecDense
	svd.SolveVecTo(&x, b, rank)
	return x.RawVector().Data
}

// rSquared is the coefficient of determination. A constant target yields 1
// for a perfect fit and 0 otherwise, never NaN.
func rSquared(pred, ys []float64) float64 {
	if stat.Variance(ys, nil) > 0 {
		return stat.RSquaredFrom(pred, ys, nil)
	}
	for i, y := range ys {
		if y != pred[i] {
			return 0
		}
	}
	return 1
}
