package forestd

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultArtifact is the artifact path used when none is configured.
const DefaultArtifact = "model.forest"

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	artifact     string
	maxBatchRows int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithArtifact sets the model artifact to load. Default: model.forest.
func WithArtifact(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.artifact = path
	})
}

// WithMaxBatchRows sets the maximum number of rows per PredictBatch call.
// Default: 1000.
func WithMaxBatchRows(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchRows = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
