package predict

import (
	"strconv"
	"time"

	"github.com/kailas-cloud/forestd/internal/domain"
	"github.com/kailas-cloud/forestd/internal/metrics"
)

// InstrumentedModel wraps a Model with evaluation latency and per-class counters.
type InstrumentedModel struct {
	inner domain.Model
}

var _ domain.Model = (*InstrumentedModel)(nil)

// NewInstrumentedModel wraps inner with Prometheus instrumentation.
func NewInstrumentedModel(inner domain.Model) *InstrumentedModel {
	return &InstrumentedModel{inner: inner}
}

// Predict delegates to the inner model and records duration and predicted classes.
func (m *InstrumentedModel) Predict(batch [][]float64) ([]int, error) {
	kind := "single"
	if len(batch) > 1 {
		kind = "batch"
	}

	start := time.Now()
	labels, err := m.inner.Predict(batch)
	metrics.PredictionDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err //nolint:wrapcheck // decorator is transparent
	}

	for _, l := range labels {
		metrics.PredictionsTotal.WithLabelValues(strconv.Itoa(l)).Inc()
	}
	return labels, nil
}

// ExpectedArity delegates to the inner model.
func (m *InstrumentedModel) ExpectedArity() int { return m.inner.ExpectedArity() }
