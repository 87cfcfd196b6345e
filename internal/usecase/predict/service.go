package predict

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/forestd/internal/domain"
	logpkg "github.com/kailas-cloud/forestd/internal/logger"
	"github.com/kailas-cloud/forestd/internal/metrics"
)

// MaxBatchRows is the default row limit per batch request.
const MaxBatchRows = 1000

// Service answers prediction requests against one model held for the process lifetime.
// It never mutates the model, so any number of goroutines may call it concurrently.
type Service struct {
	model        domain.Model
	arity        int
	maxBatchRows int
}

// New creates a prediction service around a loaded model.
func New(model domain.Model) *Service {
	return &Service{
		model:        model,
		arity:        model.ExpectedArity(),
		maxBatchRows: MaxBatchRows,
	}
}

// WithMaxBatchRows configures the maximum number of rows per batch.
func (s *Service) WithMaxBatchRows(n int) *Service {
	if n > 0 {
		s.maxBatchRows = n
	}
	return s
}

// Arity returns the number of features every input vector must have.
func (s *Service) Arity() int { return s.arity }

// Predict validates the vector's arity, evaluates it as a one-row batch and returns its class.
func (s *Service) Predict(ctx context.Context, features []float64) (int, error) {
	if err := domain.CheckArity(s.arity, features); err != nil {
		s.reject(ctx, "input_shape", err)
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		s.reject(ctx, "canceled", err)
		return 0, fmt.Errorf("predict: %w", err)
	}

	labels, err := s.model.Predict([][]float64{features})
	if err != nil {
		return 0, s.modelError(ctx, err)
	}
	if len(labels) != 1 {
		return 0, s.modelError(ctx, fmt.Errorf("model returned %d labels for 1 row", len(labels)))
	}
	return labels[0], nil
}

// PredictBatch validates every row and returns one class per row in input order.
func (s *Service) PredictBatch(ctx context.Context, rows [][]float64) ([]int, error) {
	if len(rows) == 0 {
		s.reject(ctx, "empty_batch", domain.ErrEmptyBatch)
		return nil, domain.ErrEmptyBatch
	}
	if len(rows) > s.maxBatchRows {
		err := fmt.Errorf("%w: %d rows, limit is %d", domain.ErrBatchTooLarge, len(rows), s.maxBatchRows)
		s.reject(ctx, "batch_too_large", err)
		return nil, err
	}
	for i, row := range rows {
		if len(row) != s.arity {
			err := domain.NewRowShapeError(s.arity, len(row), i)
			s.reject(ctx, "input_shape", err)
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		s.reject(ctx, "canceled", err)
		return nil, fmt.Errorf("predict batch: %w", err)
	}

	labels, err := s.model.Predict(rows)
	if err != nil {
		return nil, s.modelError(ctx, err)
	}
	if len(labels) != len(rows) {
		return nil, s.modelError(ctx, fmt.Errorf("model returned %d labels for %d rows", len(labels), len(rows)))
	}
	return labels, nil
}

// HealthCheck reports whether a usable model is held.
func (s *Service) HealthCheck(_ context.Context) error {
	if s.model == nil || s.arity <= 0 {
		return errors.New("no model loaded")
	}
	return nil
}

func (s *Service) reject(ctx context.Context, reason string, err error) {
	metrics.PredictionErrorsTotal.WithLabelValues(reason).Inc()
	logpkg.FromContext(ctx).Debug("prediction rejected", zap.String("reason", reason), zap.Error(err))
}

func (s *Service) modelError(ctx context.Context, err error) error {
	metrics.PredictionErrorsTotal.WithLabelValues("model").Inc()
	logpkg.FromContext(ctx).Error("model evaluation failed", zap.Error(err))
	return fmt.Errorf("evaluate model: %w", err)
}
