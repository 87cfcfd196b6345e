// Package forest implements a bagged ensemble of CART decision trees for
// multi-class classification over dense float64 feature vectors.
package forest

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/kailas-cloud/forestd/internal/domain"
	"github.com/kailas-cloud/forestd/internal/domain/dataset"
)

// Default hyperparameters.
const (
	DefaultNEstimators     = 10
	DefaultMaxDepth        = 3
	DefaultSeed            = 42
	DefaultMinSamplesSplit = 2
)

// Params controls model capacity and determinism.
// Zero values fall back to defaults; MaxFeatures defaults to floor(sqrt(arity)).
type Params struct {
	NEstimators     int   `json:"n_estimators" yaml:"n_estimators"`
	MaxDepth        int   `json:"max_depth" yaml:"max_depth"`
	MaxFeatures     int   `json:"max_features" yaml:"max_features"`
	MinSamplesSplit int   `json:"min_samples_split" yaml:"min_samples_split"`
	Seed            int64 `json:"random_state" yaml:"random_state"`
}

// WithDefaults returns a copy with non-positive fields replaced by defaults for the given arity.
func (p Params) WithDefaults(arity int) Params {
	if p.NEstimators <= 0 {
		p.NEstimators = DefaultNEstimators
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = DefaultMaxDepth
	}
	if p.MaxFeatures <= 0 {
		p.MaxFeatures = int(math.Sqrt(float64(arity)))
	}
	if p.MaxFeatures < 1 {
		p.MaxFeatures = 1
	}
	if p.MaxFeatures > arity {
		p.MaxFeatures = arity
	}
	if p.MinSamplesSplit < 2 {
		p.MinSamplesSplit = DefaultMinSamplesSplit
	}
	return p
}

// Forest is a fitted random forest. It is never mutated after construction and
// is safe for concurrent use.
type Forest struct {
	arity      int
	numClasses int
	params     Params
	trees      []Tree
}

var _ domain.Model = (*Forest)(nil)

// Fit grows params.NEstimators trees on bootstrap resamples of ds.
// A fixed params.Seed makes the result fully reproducible.
func Fit(ds dataset.Dataset, params Params) (*Forest, error) {
	if ds.Len() == 0 {
		return nil, fmt.Errorf("fit: dataset is empty")
	}
	params = params.WithDefaults(ds.Arity())

	features := ds.Features()
	labels := ds.Labels()
	numClasses := ds.NumClasses()
	n := ds.Len()

	master := rand.New(rand.NewSource(params.Seed)) //nolint:gosec // reproducibility, not security
	trees := make([]Tree, params.NEstimators)
	for t := range trees {
		rng := rand.New(rand.NewSource(master.Int63())) //nolint:gosec // reproducibility, not security

		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}

		b := &treeBuilder{
			features:   features,
			labels:     labels,
			numClasses: numClasses,
			params:     params,
			rng:        rng,
		}
		b.build(sample, 0)
		trees[t] = Tree{Nodes: b.nodes}
	}

	return &Forest{
		arity:      ds.Arity(),
		numClasses: numClasses,
		params:     params,
		trees:      trees,
	}, nil
}

// Reconstruct rebuilds a Forest from stored state, validating tree structure.
func Reconstruct(arity, numClasses int, params Params, trees []Tree) (*Forest, error) {
	if arity <= 0 {
		return nil, fmt.Errorf("arity must be positive, got %d", arity)
	}
	if numClasses <= 0 {
		return nil, fmt.Errorf("class count must be positive, got %d", numClasses)
	}
	if len(trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}
	copied := make([]Tree, len(trees))
	for i, t := range trees {
		if err := t.validate(arity, numClasses); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		copied[i] = Tree{Nodes: append([]Node(nil), t.Nodes...)}
	}
	return &Forest{arity: arity, numClasses: numClasses, params: params, trees: copied}, nil
}

// Predict returns the majority-vote class for every row. Ties go to the lowest class.
func (f *Forest) Predict(batch [][]float64) ([]int, error) {
	out := make([]int, len(batch))
	votes := make([]int, f.numClasses)
	for i, x := range batch {
		if len(x) != f.arity {
			return nil, domain.NewRowShapeError(f.arity, len(x), i)
		}
		for c := range votes {
			votes[c] = 0
		}
		for _, t := range f.trees {
			votes[t.predict(x)]++
		}
		out[i] = argmax(votes)
	}
	return out, nil
}

// ExpectedArity returns the number of features the forest was fitted on.
func (f *Forest) ExpectedArity() int { return f.arity }

// NumClasses returns the size of the class identifier space.
func (f *Forest) NumClasses() int { return f.numClasses }

// Params returns the effective hyperparameters.
func (f *Forest) Params() Params { return f.params }

// Trees returns a deep copy of the fitted trees.
func (f *Forest) Trees() []Tree {
	out := make([]Tree, len(f.trees))
	for i, t := range f.trees {
		out[i] = Tree{Nodes: append([]Node(nil), t.Nodes...)}
	}
	return out
}

// Accuracy returns the fraction of rows in ds the model labels correctly.
func Accuracy(m domain.Model, ds dataset.Dataset) (float64, error) {
	if ds.Len() == 0 {
		return 0, fmt.Errorf("accuracy: dataset is empty")
	}
	predicted, err := m.Predict(ds.Features())
	if err != nil {
		return 0, fmt.Errorf("accuracy: %w", err)
	}
	labels := ds.Labels()
	correct := 0
	for i, p := range predicted {
		if p == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(labels)), nil
}

// Trainer fits forests with fixed hyperparameters.
type Trainer struct {
	Params Params
}

// Fit grows a forest on ds.
func (t Trainer) Fit(ds dataset.Dataset) (domain.Model, error) {
	f, err := Fit(ds, t.Params)
	if err != nil {
		return nil, err
	}
	return f, nil
}
