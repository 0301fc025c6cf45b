package admission

import (
	"math"

	"UniPredict/internal/domain/models"
)

// Chance bands as multiples of the predicted cutoff.
const (
	HighBand     = 1.1
	GoodBand     = 1.0
	PossibleBand = 0.9
)

// Aggregate combines raw marks into a weighted percentage. A component
// contributes only when the university defines a non-zero total for it, and
// the test component only when a score was supplied. Weights are applied
// as-is, without normalization.
func Aggregate(matric, fsc float64, test *float64, totals, weights map[models.Component]float64) float64 {
	pct := func(raw float64, c models.Component) float64 {
		t := totals[c]
		if t == 0 {
			return 0
		}
		return raw / t * 100
	}

	agg := pct(matric, models.ComponentMatric)*weights[models.ComponentMatric] +
		pct(fsc, models.ComponentFSc)*weights[models.ComponentFSc]
	if test != nil {
		agg += pct(*test, models.ComponentTest) * weights[models.ComponentTest]
	}
	return agg
}

// Classify maps an aggregate to a chance band around the predicted cutoff.
func Classify(userAggregate float64, predictedCutoff *float64) models.Chance {
	if predictedCutoff == nil {
		return models.ChanceUnknown
	}
	p := *predictedCutoff
	switch {
	case userAggregate >= p*HighBand:
		return models.ChanceHigh
	case userAggregate >= p*GoodBand:
		return models.ChanceGood
	case userAggregate >= p*PossibleBand:
		return models.ChancePossible
	default:
		return models.ChanceLow
	}
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
