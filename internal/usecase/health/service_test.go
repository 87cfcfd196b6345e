package health

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/forestd/internal/version"
)

// --- Mocks ---

type mockModelChecker struct {
	err error
}

func (m *mockModelChecker) HealthCheck(_ context.Context) error { return m.err }

type mockReadiness struct {
	err error
}

func (m *mockReadiness) Ready() error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockModelChecker{}, &mockReadiness{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["model"] != CheckOK {
		t.Errorf("expected model %q, got %q", CheckOK, r.Checks["model"])
	}
	if r.Checks["lifecycle"] != CheckOK {
		t.Errorf("expected lifecycle %q, got %q", CheckOK, r.Checks["lifecycle"])
	}
	if r.Version != version.Version {
		t.Errorf("expected version %q, got %q", version.Version, r.Version)
	}
}

func TestCheck_ModelError(t *testing.T) {
	svc := New(&mockModelChecker{err: errors.New("no model loaded")}, &mockReadiness{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["model"] != CheckError {
		t.Errorf("expected model %q, got %q", CheckError, r.Checks["model"])
	}
}

func TestCheck_NotServing(t *testing.T) {
	svc := New(&mockModelChecker{}, &mockReadiness{err: errors.New("state LOADED")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["lifecycle"] != CheckError {
		t.Error("expected lifecycle error")
	}
}

func TestCheck_NoReadiness(t *testing.T) {
	svc := New(&mockModelChecker{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["lifecycle"]; ok {
		t.Error("lifecycle check should be absent when readiness is nil")
	}
}
