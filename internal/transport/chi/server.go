package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/forestd/internal/domain"
	"github.com/kailas-cloud/forestd/internal/metrics"
	healthuc "github.com/kailas-cloud/forestd/internal/usecase/health"
	predictuc "github.com/kailas-cloud/forestd/internal/usecase/predict"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// maxGoroutines fails liveness when the process leaks handler goroutines.
const maxGoroutines = 10000

var errTrailingData = errors.New("unexpected data after JSON value")

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// ReadinessChecker reports whether the process accepts traffic.
type ReadinessChecker interface {
	Ready() error
}

// Server serves predictions and operational endpoints over chi.
type Server struct {
	predict       *predictuc.Service
	health        *healthuc.Service
	ready         ReadinessChecker
	logger        *zap.Logger
	maxBodyBytes  int64
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(predict *predictuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		predict:      predict,
		health:       health,
		logger:       logger,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	s.errorHandlers = []errorHandler{
		inputShapeHandler,
		sentinelHandler(domain.ErrEmptyBatch, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrBatchTooLarge, http.StatusRequestEntityTooLarge, ErrorCodeBatchTooLarge),
	}
	return s
}

// WithMaxBodyBytes configures the request body limit.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// WithReadiness gates GET /ready on the given checker.
func (s *Server) WithReadiness(ready ReadinessChecker) *Server {
	s.ready = ready
	return s
}

// Routes builds the chi router with all middleware and endpoints.
func (s *Server) Routes() http.Handler {
	probes := healthcheck.NewHandler()
	probes.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(maxGoroutines))
	if s.ready != nil {
		probes.AddReadinessCheck("lifecycle", s.ready.Ready)
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/", s.Root)
	r.Post("/predict", s.Predict)
	r.Post("/predict/", s.Predict)
	r.Post("/predict/batch", s.PredictBatch)
	r.Get("/health", s.Health)
	r.Get("/live", probes.LiveEndpoint)
	r.Get("/ready", probes.ReadyEndpoint)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"Hello": "World"})
}

// Predict handles POST /predict/.
func (s *Server) Predict(w http.ResponseWriter, r *http.Request) {
	var features []float64
	if !s.decodeBody(w, r, &features) {
		return
	}

	label, err := s.predict.Predict(r.Context(), features)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{Prediction: label})
}

// PredictBatch handles POST /predict/batch.
func (s *Server) PredictBatch(w http.ResponseWriter, r *http.Request) {
	var rows [][]float64
	if !s.decodeBody(w, r, &rows) {
		return
	}

	labels, err := s.predict.PredictBatch(r.Context(), rows)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BatchPredictResponse{Predictions: labels})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: report.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decodeBody reads a size-limited JSON body into v. On failure it writes the response and returns false.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(v)
	if err == nil {
		if extra := dec.Decode(&json.RawMessage{}); !errors.Is(extra, io.EOF) {
			err = errTrailingData
			if extra != nil {
				err = extra
			}
		}
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeRequestTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing internals.
func safeDomainMessage(err error) string {
	var ise *domain.InputShapeError
	if errors.As(err, &ise) {
		return ise.Error()
	}
	for _, s := range []error{domain.ErrEmptyBatch, domain.ErrBatchTooLarge} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler creates an errorHandler for a sentinel error with a fixed status and code.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// inputShapeHandler handles ErrInputShape with the expected and actual arity.
func inputShapeHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInputShape) {
		return false
	}
	var ise *domain.InputShapeError
	if !errors.As(err, &ise) {
		writeError(w, http.StatusBadRequest, ErrorCodeInputShapeMismatch, msg)
		return true
	}
	resp := InputShapeResponse{
		Code:     ErrorCodeInputShapeMismatch,
		Message:  msg,
		Expected: ise.Expected,
		Got:      ise.Got,
	}
	if ise.Row >= 0 {
		row := ise.Row
		resp.Row = &row
	}
	writeJSON(w, http.StatusBadRequest, resp)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
