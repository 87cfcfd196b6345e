package predict

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/forestd/internal/domain"
	"github.com/kailas-cloud/forestd/internal/metrics"
)

// Startup loads the artifact exactly once and returns a Service holding it.
// On failure the tracker moves to LOADING_FAILED and the returned error wraps
// domain.ErrArtifactLoad; there is no fallback model.
func Startup(ctx context.Context, loader ArtifactLoader, state StateTracker, logger *zap.Logger) (*Service, error) {
	start := time.Now()
	model, err := loader.Load(ctx)
	if err == nil && (model == nil || model.ExpectedArity() <= 0) {
		err = errors.New("artifact holds no usable model")
	}
	if err != nil {
		if !errors.Is(err, domain.ErrArtifactLoad) {
			err = fmt.Errorf("%w: %w", domain.ErrArtifactLoad, err)
		}
		if serr := state.MarkFailed(); serr != nil {
			logger.Error("Failed to record load failure", zap.Error(serr))
		}
		return nil, err
	}

	elapsed := time.Since(start)
	if err := state.MarkLoaded(); err != nil {
		return nil, fmt.Errorf("startup: %w", err)
	}

	metrics.ModelLoadDuration.Set(elapsed.Seconds())
	metrics.ModelArity.Set(float64(model.ExpectedArity()))
	logger.Info("Model artifact loaded",
		zap.String("path", loader.Path()),
		zap.Int("arity", model.ExpectedArity()),
		zap.Duration("duration", elapsed),
	)

	return New(NewInstrumentedModel(model)), nil
}
