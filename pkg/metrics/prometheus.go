package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions   *prometheus.CounterVec
	models        *prometheus.CounterVec
	historyErrors *prometheus.CounterVec
	scrapes       *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a recorder whose collectors are registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unipredict_predictions_total",
				Help: "Prediction rows produced, by university and admission chance",
			},
			[]string{"university", "chance"},
		),
		models: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unipredict_forecast_model_total",
				Help: "Forecast model selected for a cutoff prediction",
			},
			[]string{"model"},
		),
		historyErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unipredict_history_errors_total",
				Help: "Historical cutoff loads that failed or had no source",
			},
			[]string{"university"},
		),
		scrapes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "unipredict_scrape_total",
				Help: "Content scrapes by source and outcome (fresh, cache, error)",
			},
			[]string{"source", "outcome"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "unipredict_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordPrediction(university, chance string) {
	r.predictions.WithLabelValues(university, chance).Inc()
}

func (r *Recorder) RecordForecastModel(model string) {
	r.models.WithLabelValues(model).Inc()
}

func (r *Recorder) RecordHistoryError(university string) {
	r.historyErrors.WithLabelValues(university).Inc()
}

func (r *Recorder) RecordScrape(source, outcome string) {
	r.scrapes.WithLabelValues(source, outcome).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
