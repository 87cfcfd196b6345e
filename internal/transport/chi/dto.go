package chi

// ErrorCode is the machine-readable error kind returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeInputShapeMismatch ErrorCode = "input_shape_mismatch"
	ErrorCodeBatchTooLarge      ErrorCode = "batch_too_large"
	ErrorCodeRequestTooLarge    ErrorCode = "request_too_large"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// InputShapeResponse is the JSON body for an arity mismatch.
type InputShapeResponse struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Expected int       `json:"expected"`
	Got      int       `json:"got"`
	Row      *int      `json:"row,omitempty"`
}

// PredictResponse is the body of a successful single prediction.
type PredictResponse struct {
	Prediction int `json:"prediction"`
}

// BatchPredictResponse is the body of a successful batch prediction.
type BatchPredictResponse struct {
	Predictions []int `json:"predictions"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}
