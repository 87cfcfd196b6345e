package lifecycle

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/forestd/internal/domain"
)

func TestTracker_HappyPath(t *testing.T) {
	tr := New()
	if tr.State() != Uninitialized {
		t.Fatalf("expected %s, got %s", Uninitialized, tr.State())
	}
	if err := tr.Ready(); err == nil {
		t.Fatal("expected not ready before serving")
	}

	if err := tr.MarkLoaded(); err != nil {
		t.Fatalf("MarkLoaded: %v", err)
	}
	if err := tr.MarkServing(); err != nil {
		t.Fatalf("MarkServing: %v", err)
	}
	if tr.State() != Serving {
		t.Fatalf("expected %s, got %s", Serving, tr.State())
	}
	if err := tr.Ready(); err != nil {
		t.Fatalf("expected ready, got %v", err)
	}
}

func TestTracker_FailedIsTerminal(t *testing.T) {
	tr := New()
	if err := tr.MarkFailed(); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	for name, fn := range map[string]func() error{
		"loaded":  tr.MarkLoaded,
		"serving": tr.MarkServing,
		"failed":  tr.MarkFailed,
	} {
		if err := fn(); !errors.Is(err, domain.ErrIllegalTransition) {
			t.Errorf("%s: expected ErrIllegalTransition, got %v", name, err)
		}
	}
	if tr.State() != LoadingFailed {
		t.Errorf("expected %s, got %s", LoadingFailed, tr.State())
	}
}

func TestTracker_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup []func(*Tracker) error
		step  func(*Tracker) error
	}{
		{"serve before load", nil, (*Tracker).MarkServing},
		{"load twice", []func(*Tracker) error{(*Tracker).MarkLoaded}, (*Tracker).MarkLoaded},
		{"fail after load", []func(*Tracker) error{(*Tracker).MarkLoaded}, (*Tracker).MarkFailed},
		{"back from serving", []func(*Tracker) error{(*Tracker).MarkLoaded, (*Tracker).MarkServing}, (*Tracker).MarkLoaded},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := New()
			for _, s := range tc.setup {
				if err := s(tr); err != nil {
					t.Fatalf("setup: %v", err)
				}
			}
			before := tr.State()
			if err := tc.step(tr); !errors.Is(err, domain.ErrIllegalTransition) {
				t.Fatalf("expected ErrIllegalTransition, got %v", err)
			}
			if tr.State() != before {
				t.Errorf("state changed from %s to %s", before, tr.State())
			}
		})
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		Uninitialized: "UNINITIALIZED",
		Loaded:        "LOADED",
		Serving:       "SERVING",
		LoadingFailed: "LOADING_FAILED",
		State(9):      "State(9)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int32(s), got, want)
		}
	}
}
