package training

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/forestd/internal/domain"
	"github.com/kailas-cloud/forestd/internal/forest"
)

// DefaultTestFraction is the share of rows held out for evaluation.
const DefaultTestFraction = 0.3

// Params controls the train/test partition.
type Params struct {
	TestFraction float64
	Seed         int64
}

// Report summarizes a finished training run.
type Report struct {
	Source    string
	TrainSize int
	TestSize  int
	Arity     int
	Accuracy  float64
	Path      string
	Duration  time.Duration
}

// Service runs the offline pipeline: load, split, fit, evaluate, persist.
// Each run is a single attempt; any failing step aborts it.
type Service struct {
	data   DatasetLoader
	fitter Fitter
	store  ArtifactWriter
	logger *zap.Logger
}

// New creates a training Service.
func New(data DatasetLoader, fitter Fitter, store ArtifactWriter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{data: data, fitter: fitter, store: store, logger: logger}
}

// Run executes the pipeline. The returned report is valid only when err is nil.
func (s *Service) Run(ctx context.Context, p Params) (Report, error) {
	start := time.Now()
	if p.TestFraction == 0 {
		p.TestFraction = DefaultTestFraction
	}

	ds, err := s.data.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrDatasetUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrDatasetUnavailable, err)
		}
		return Report{}, err
	}
	s.logger.Info("Dataset loaded",
		zap.String("source", s.data.Source()),
		zap.Int("rows", ds.Len()),
		zap.Int("arity", ds.Arity()),
		zap.Int("classes", ds.NumClasses()),
	)

	train, test, err := ds.Split(p.TestFraction, p.Seed)
	if err != nil {
		return Report{}, err
	}
	s.logger.Debug("Dataset split",
		zap.Int("train", train.Len()),
		zap.Int("test", test.Len()),
		zap.Int64("seed", p.Seed),
	)

	model, err := s.fitter.Fit(train)
	if err != nil {
		return Report{}, fmt.Errorf("fit model: %w", err)
	}

	accuracy, err := forest.Accuracy(model, test)
	if err != nil {
		return Report{}, fmt.Errorf("evaluate model: %w", err)
	}
	s.logger.Info("Model evaluated", zap.Float64("accuracy", accuracy))

	if err := ctx.Err(); err != nil {
		return Report{}, fmt.Errorf("%w: %w", domain.ErrPersistFailure, err)
	}
	if err := s.store.Save(ctx, model); err != nil {
		if !errors.Is(err, domain.ErrPersistFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrPersistFailure, err)
		}
		return Report{}, err
	}

	r := Report{
		Source:    s.data.Source(),
		TrainSize: train.Len(),
		TestSize:  test.Len(),
		Arity:     model.ExpectedArity(),
		Accuracy:  accuracy,
		Path:      s.store.Path(),
		Duration:  time.Since(start),
	}
	s.logger.Info("Model artifact written",
		zap.String("path", r.Path),
		zap.Duration("duration", r.Duration),
	)
	return r, nil
}
