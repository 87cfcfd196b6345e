package training

import (
	"context"

	"github.com/kailas-cloud/forestd/internal/domain"
	"github.com/kailas-cloud/forestd/internal/domain/dataset"
)

// DatasetLoader supplies the labeled training data.
type DatasetLoader interface {
	Load(ctx context.Context) (dataset.Dataset, error)
	Source() string
}

// Fitter grows a model from a training partition.
type Fitter interface {
	Fit(ds dataset.Dataset) (domain.Model, error)
}

// ArtifactWriter persists the fitted model.
type ArtifactWriter interface {
	Save(ctx context.Context, m domain.Model) error
	Path() string
}
