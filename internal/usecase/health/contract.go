package health

import "context"

// ModelChecker reports whether a usable model is held.
type ModelChecker interface {
	HealthCheck(ctx context.Context) error
}

// ReadinessChecker reports whether the process has reached the serving state.
type ReadinessChecker interface {
	Ready() error
}
