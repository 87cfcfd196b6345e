package forestd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/forestd/internal/artifact"
	"github.com/kailas-cloud/forestd/internal/lifecycle"
	healthuc "github.com/kailas-cloud/forestd/internal/usecase/health"
	predictuc "github.com/kailas-cloud/forestd/internal/usecase/predict"
)

// Internal interfaces for substitution in tests.
type predictUseCase interface {
	Predict(ctx context.Context, features []float64) (int, error)
	PredictBatch(ctx context.Context, rows [][]float64) ([]int, error)
	Arity() int
}

// Client is the forestd SDK entry point. It holds one model for its lifetime
// and is safe for concurrent use.
type Client struct {
	predictSvc predictUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// Open loads the model artifact and returns a ready Client.
func Open(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{artifact: DefaultArtifact}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	state := lifecycle.New()
	svc, err := predictuc.Startup(ctx, artifact.NewStore(cfg.artifact), state, zap.NewNop())
	obs.observe("open", start, err)
	if err != nil {
		return nil, fmt.Errorf("forestd: open %s: %w", cfg.artifact, err)
	}
	if cfg.maxBatchRows > 0 {
		svc.WithMaxBatchRows(cfg.maxBatchRows)
	}
	if err := state.MarkServing(); err != nil {
		return nil, fmt.Errorf("forestd: %w", err)
	}

	return &Client{
		predictSvc: svc,
		healthSvc:  healthuc.New(svc, state),
		obs:        obs,
	}, nil
}

// Arity returns the number of features every input vector must have.
func (c *Client) Arity() int {
	return c.predictSvc.Arity()
}

// Predict classifies one feature vector.
func (c *Client) Predict(ctx context.Context, features []float64) (class int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("predict", start, err) }()

	class, err = c.predictSvc.Predict(ctx, features)
	if err != nil {
		return 0, fmt.Errorf("predict: %w", err)
	}
	return class, nil
}

// PredictBatch classifies rows and returns one class per row in input order.
func (c *Client) PredictBatch(ctx context.Context, rows [][]float64) (classes []int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("predict_batch", start, err) }()

	classes, err = c.predictSvc.PredictBatch(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("predict batch: %w", err)
	}
	return classes, nil
}
