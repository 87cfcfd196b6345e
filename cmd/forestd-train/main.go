package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"go.uber.org/zap"

	"github.com/kailas-cloud/forestd/internal/artifact"
	"github.com/kailas-cloud/forestd/internal/config"
	"github.com/kailas-cloud/forestd/internal/forest"
	logpkg "github.com/kailas-cloud/forestd/internal/logger"
	dsrepo "github.com/kailas-cloud/forestd/internal/repository/dataset"
	traininguc "github.com/kailas-cloud/forestd/internal/usecase/training"
	"github.com/kailas-cloud/forestd/internal/version"
)

// args override the matching config values when set.
type args struct {
	Config       string  `arg:"--config,env:FORESTD_CONFIG" help:"path to a YAML config file (default: config/<ENV>.yaml)"`
	Dataset      string  `arg:"--dataset,env:FORESTD_DATASET" help:"training data (.csv or .parquet); empty uses the built-in reference set"`
	Artifact     string  `arg:"--artifact,env:MODEL_PATH" help:"where to write the model artifact"`
	Seed         *int64  `arg:"--seed,env:FORESTD_SEED" help:"seed for both the split and the forest"`
	TestFraction float64 `arg:"--test-fraction" help:"share of rows held out for evaluation"`
	NEstimators  int     `arg:"--n-estimators" help:"number of trees"`
	MaxDepth     int     `arg:"--max-depth" help:"maximum tree depth"`
}

func (args) Version() string { return "forestd-train " + version.String() }

func main() {
	var flags args
	arg.MustParse(&flags)

	env := config.GetEnv()
	cfg, err := loadConfig(env, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	fc := cfg.Training.Forest
	trainer := forest.Trainer{Params: forest.Params{
		NEstimators:     fc.NEstimators,
		MaxDepth:        fc.MaxDepth,
		MaxFeatures:     fc.MaxFeatures,
		MinSamplesSplit: fc.MinSamplesSplit,
		Seed:            *fc.RandomState,
	}}
	svc := traininguc.New(
		dsrepo.New(cfg.Training.Dataset),
		trainer,
		artifact.NewStore(cfg.Model.ArtifactPath),
		logger,
	)

	report, err := svc.Run(context.Background(), traininguc.Params{
		TestFraction: cfg.Training.TestFraction,
		Seed:         *cfg.Training.SplitSeed,
	})
	if err != nil {
		logger.Error("Training failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	fmt.Printf("Model accuracy: %.2f%%\n", report.Accuracy*100)
}

func loadConfig(env string, flags args) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if flags.Config != "" {
		cfg, err = config.LoadFile(flags.Config)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, err
	}

	if flags.Dataset != "" {
		cfg.Training.Dataset = flags.Dataset
	}
	if flags.Artifact != "" {
		cfg.Model.ArtifactPath = flags.Artifact
	}
	if flags.Seed != nil {
		seed := *flags.Seed
		cfg.Training.SplitSeed = &seed
		cfg.Training.Forest.RandomState = &seed
	}
	if flags.TestFraction != 0 {
		cfg.Training.TestFraction = flags.TestFraction
	}
	if flags.NEstimators != 0 {
		cfg.Training.Forest.NEstimators = flags.NEstimators
	}
	if flags.MaxDepth != 0 {
		cfg.Training.Forest.MaxDepth = flags.MaxDepth
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
