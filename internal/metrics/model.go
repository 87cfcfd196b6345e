package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Model Prometheus metrics.
var (
	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "predictions_total",
			Help:      "Total predicted rows by class",
		},
		[]string{"class"},
	)

	PredictionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "prediction_errors_total",
			Help:      "Total rejected or failed prediction requests",
		},
		[]string{"reason"}, // "input_shape" / "empty_batch" / "batch_too_large" / "canceled" / "model"
	)

	PredictionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Model evaluation duration in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
		[]string{"kind"}, // "single" / "batch"
	)

	ModelArity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "model_arity",
			Help:      "Number of features the loaded model expects",
		},
	)

	ModelLoadDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "model_load_duration_seconds",
			Help:      "Time spent loading the model artifact at startup",
		},
	)
)

var registerModelOnce sync.Once

// RegisterModelMetrics registers Prometheus model metrics. Safe to call more than once.
func RegisterModelMetrics() {
	registerModelOnce.Do(func() {
		prometheus.MustRegister(
			PredictionsTotal,
			PredictionErrorsTotal,
			PredictionDuration,
			ModelArity,
			ModelLoadDuration,
		)
	})
}
