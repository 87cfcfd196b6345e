// Package artifact persists fitted forests as self-contained, snappy-compressed
// JSON documents and loads them back.
package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	"github.com/kailas-cloud/forestd/internal/domain"
	"github.com/kailas-cloud/forestd/internal/forest"
)

// Format identifies the artifact payload; Version is bumped on incompatible layout changes.
const (
	Format  = "forestd/random-forest"
	Version = 1
)

type envelope struct {
	Format  string        `json:"format"`
	Version int           `json:"version"`
	Arity   int           `json:"arity"`
	Classes int           `json:"classes"`
	Params  forest.Params `json:"params"`
	Trees   []forest.Tree `json:"trees"`
}

// Encode serializes a forest into artifact bytes.
func Encode(f *forest.Forest) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("encode: nil forest")
	}
	b, err := json.Marshal(envelope{
		Format:  Format,
		Version: Version,
		Arity:   f.ExpectedArity(),
		Classes: f.NumClasses(),
		Params:  f.Params(),
		Trees:   f.Trees(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return snappy.Encode(nil, b), nil
}

// Decode restores a forest from artifact bytes, validating format and structure.
func Decode(b []byte) (*forest.Forest, error) {
	raw, err := snappy.Decode(nil, b)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if env.Format != Format {
		return nil, fmt.Errorf("unknown artifact format %q", env.Format)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("unsupported artifact version %d (want %d)", env.Version, Version)
	}
	f, err := forest.Reconstruct(env.Arity, env.Classes, env.Params, env.Trees)
	if err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	return f, nil
}

// Store reads and writes the artifact at a fixed path.
type Store struct {
	path string
}

// NewStore creates a Store bound to path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the artifact location.
func (s *Store) Path() string { return s.path }

// Save writes m to the artifact path, creating parent directories and
// overwriting any existing file. Failures wrap domain.ErrPersistFailure.
func (s *Store) Save(ctx context.Context, m domain.Model) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistFailure, err)
	}
	f, ok := m.(*forest.Forest)
	if !ok {
		return fmt.Errorf("%w: unsupported model type %T", domain.ErrPersistFailure, m)
	}

	b, err := Encode(f)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistFailure, err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create dir: %w", domain.ErrPersistFailure, err)
		}
	}
	if err := os.WriteFile(filepath.Clean(s.path), b, 0o644); err != nil { //nolint:gosec // model is not secret
		return fmt.Errorf("%w: %w", domain.ErrPersistFailure, err)
	}
	return nil
}

// Load reads and decodes the artifact. Failures wrap domain.ErrArtifactLoad.
func (s *Store) Load(ctx context.Context) (domain.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrArtifactLoad, err)
	}
	b, err := os.ReadFile(filepath.Clean(s.path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrArtifactLoad, err)
	}
	f, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrArtifactLoad, s.path, err)
	}
	return f, nil
}
