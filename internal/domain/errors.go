package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDatasetUnavailable signals that the training dataset source could not be read.
	ErrDatasetUnavailable = errors.New("dataset unavailable")
	// ErrInvalidSplit signals an unusable train/test partition request.
	ErrInvalidSplit = errors.New("invalid split")
	// ErrPersistFailure signals that the model artifact could not be written.
	ErrPersistFailure = errors.New("persist failure")
	// ErrArtifactLoad signals a missing, corrupt or incompatible model artifact.
	ErrArtifactLoad = errors.New("artifact load failure")

	// ErrInputShape signals a feature vector whose arity differs from the model's.
	ErrInputShape = errors.New("input shape mismatch")
	// ErrEmptyBatch signals a batch prediction request with no rows.
	ErrEmptyBatch = errors.New("empty batch")
	// ErrBatchTooLarge signals a batch prediction request above the configured row limit.
	ErrBatchTooLarge = errors.New("batch too large")

	// ErrIllegalTransition signals a lifecycle state change that is not allowed.
	ErrIllegalTransition = errors.New("illegal lifecycle transition")
)

// InputShapeError wraps ErrInputShape with the expected and actual arity.
// Row is the offending row index for batch input, -1 for a single vector.
type InputShapeError struct {
	Expected int
	Got      int
	Row      int
}

func (e *InputShapeError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("%s: row %d has %d features, model expects %d",
			ErrInputShape.Error(), e.Row, e.Got, e.Expected)
	}
	return fmt.Sprintf("%s: got %d features, model expects %d", ErrInputShape.Error(), e.Got, e.Expected)
}

func (e *InputShapeError) Unwrap() error { return ErrInputShape }

// NewInputShapeError creates an input shape error for a single vector.
func NewInputShapeError(expected, got int) error {
	return &InputShapeError{Expected: expected, Got: got, Row: -1}
}

// NewRowShapeError creates an input shape error for one row of a batch.
func NewRowShapeError(expected, got, row int) error {
	return &InputShapeError{Expected: expected, Got: got, Row: row}
}
