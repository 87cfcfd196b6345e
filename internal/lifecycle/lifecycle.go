// Package lifecycle tracks the inference service process state.
//
//	UNINITIALIZED -> LOADED -> SERVING
//	UNINITIALIZED -> LOADING_FAILED (terminal)
package lifecycle

import (
	"fmt"

	"go.uber.org/atomic"

	"github.com/kailas-cloud/forestd/internal/domain"
)

// State is a serving process state.
type State int32

// Serving process states.
const (
	Uninitialized State = iota
	Loaded
	Serving
	LoadingFailed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "UNINITIALIZED"
	case Loaded:
		return "LOADED"
	case Serving:
		return "SERVING"
	case LoadingFailed:
		return "LOADING_FAILED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Tracker holds the current state. The zero value is Uninitialized and ready to use.
type Tracker struct {
	state atomic.Int32
}

// New creates a Tracker in the Uninitialized state.
func New() *Tracker {
	return &Tracker{}
}

// State returns the current state.
func (t *Tracker) State() State { return State(t.state.Load()) }

// MarkLoaded moves UNINITIALIZED -> LOADED.
func (t *Tracker) MarkLoaded() error { return t.advance(Uninitialized, Loaded) }

// MarkServing moves LOADED -> SERVING.
func (t *Tracker) MarkServing() error { return t.advance(Loaded, Serving) }

// MarkFailed moves UNINITIALIZED -> LOADING_FAILED.
func (t *Tracker) MarkFailed() error { return t.advance(Uninitialized, LoadingFailed) }

// Ready reports whether requests may be served.
func (t *Tracker) Ready() error {
	if s := t.State(); s != Serving {
		return fmt.Errorf("not serving: state is %s", s)
	}
	return nil
}

// advance is the only writer; from -> to must be one of the edges above.
func (t *Tracker) advance(from, to State) error {
	if !t.state.CompareAndSwap(int32(from), int32(to)) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrIllegalTransition, t.State(), to)
	}
	return nil
}
