package forestd

import "github.com/kailas-cloud/forestd/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInputShape         = domain.ErrInputShape
	ErrEmptyBatch         = domain.ErrEmptyBatch
	ErrBatchTooLarge      = domain.ErrBatchTooLarge
	ErrArtifactLoad       = domain.ErrArtifactLoad
	ErrDatasetUnavailable = domain.ErrDatasetUnavailable
	ErrInvalidSplit       = domain.ErrInvalidSplit
	ErrPersistFailure     = domain.ErrPersistFailure
)

// InputShapeError carries the expected and actual arity; use errors.As.
type InputShapeError = domain.InputShapeError
