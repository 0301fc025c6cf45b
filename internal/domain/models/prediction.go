package models

// Chance is the admission category label.
type Chance string

const (
	ChanceHigh     Chance = "High (90%+)"
	ChanceGood     Chance = "Good (70-90%)"
	ChancePossible Chance = "Possible (30-70%)"
	ChanceLow      Chance = "Low (<30%)"
	ChanceUnknown  Chance = "Unknown"
	ChanceGraduate Chance = "Graduate application - no prediction needed"
)

// ScoreRequired is the label for a university whose required test score is missing.
func ScoreRequired(test TestName) Chance {
	return Chance(string(test) + " score required")
}

// ModelName is the forecasting model that produced a prediction.
type ModelName string

const (
	ModelLinear      ModelName = "linear"
	ModelPolynomial  ModelName = "polynomial"
	ModelSinglePoint ModelName = "single_point"
)

// Forecast is a predicted cutoff with its fit-quality signal. R² values are
// nil for single-point forecasts.
type Forecast struct {
	Value    float64
	LinearR2 *float64
	PolyR2   *float64
	Model    ModelName
}

// PredictionResult is one university's row in a prediction response.
type PredictionResult struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	UserAggregate    *float64   `json:"user_aggregate"`
	PredictedCutoff  *float64   `json:"predicted_cutoff"`
	Admitted         *bool      `json:"admitted"`
	AdmissionChance  Chance     `json:"admission_chance"`
	Criteria         Criteria   `json:"criteria"`
	LastActualCutoff *float64   `json:"last_actual_cutoff"`
	LastActualYear   *int       `json:"last_actual_year"`
	LinearR2         *float64   `json:"linear_r2"`
	PolyR2           *float64   `json:"poly_r2"`
	BestModel        *ModelName `json:"best_model"`
}

// PredictionBatch is the whole response for one applicant.
type PredictionBatch struct {
	TargetYear   int                `json:"target_year"`
	Universities []PredictionResult `json:"universities"`
	UserData     *UserData          `json:"user_data,omitempty"`
}
