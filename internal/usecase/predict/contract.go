package predict

import (
	"context"

	"github.com/kailas-cloud/forestd/internal/domain"
)

// ArtifactLoader reads the model artifact from durable storage.
type ArtifactLoader interface {
	Load(ctx context.Context) (domain.Model, error)
	Path() string
}

// StateTracker records the outcome of the startup load.
type StateTracker interface {
	MarkLoaded() error
	MarkFailed() error
}
