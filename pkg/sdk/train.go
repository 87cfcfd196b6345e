package forestd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/forestd/internal/artifact"
	"github.com/kailas-cloud/forestd/internal/forest"
	dsrepo "github.com/kailas-cloud/forestd/internal/repository/dataset"
	traininguc "github.com/kailas-cloud/forestd/internal/usecase/training"
)

// DefaultSeed seeds the split and the forest when TrainOptions.Seed is nil,
// matching forestd-train.
const DefaultSeed int64 = 42

// TrainOptions controls an offline training run. Zero values use defaults:
// the built-in reference dataset, model.forest, a 0.3 test fraction,
// DefaultSeed, 10 trees of depth 3.
type TrainOptions struct {
	Dataset      string
	Artifact     string
	TestFraction float64
	Seed         *int64 // nil = DefaultSeed; use Seed(0) for an explicit zero
	NEstimators  int
	MaxDepth     int
}

// Seed returns a pointer to v for TrainOptions.Seed.
func Seed(v int64) *int64 { return &v }

// TrainReport summarizes a finished training run.
type TrainReport struct {
	Accuracy  float64
	TrainSize int
	TestSize  int
	Arity     int
	Artifact  string
}

// Train loads the dataset, fits a forest, evaluates it on the held-out rows
// and writes the artifact.
func Train(ctx context.Context, opts TrainOptions) (TrainReport, error) {
	if opts.Artifact == "" {
		opts.Artifact = DefaultArtifact
	}
	seed := DefaultSeed
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	svc := traininguc.New(
		dsrepo.New(opts.Dataset),
		forest.Trainer{Params: forest.Params{
			NEstimators: opts.NEstimators,
			MaxDepth:    opts.MaxDepth,
			Seed:        seed,
		}},
		artifact.NewStore(opts.Artifact),
		zap.NewNop(),
	)

	r, err := svc.Run(ctx, traininguc.Params{TestFraction: opts.TestFraction, Seed: seed})
	if err != nil {
		return TrainReport{}, fmt.Errorf("forestd: train: %w", err)
	}
	return TrainReport{
		Accuracy:  r.Accuracy,
		TrainSize: r.TrainSize,
		TestSize:  r.TestSize,
		Arity:     r.Arity,
		Artifact:  r.Path,
	}, nil
}
