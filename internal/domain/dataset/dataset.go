package dataset

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/samber/lo"

	"github.com/kailas-cloud/forestd/internal/domain"
)

// MaxClasses bounds the class identifier space; labels must be below it.
const MaxClasses = 1024

// Dataset is an ordered, labeled set of feature vectors (immutable value object).
// All vectors share one arity; labels are non-negative class identifiers.
type Dataset struct {
	features [][]float64
	labels   []int
	arity    int
}

// New validates and creates a Dataset. Inputs are copied.
func New(features [][]float64, labels []int) (Dataset, error) {
	if len(features) == 0 {
		return Dataset{}, fmt.Errorf("dataset is empty")
	}
	if len(features) != len(labels) {
		return Dataset{}, fmt.Errorf("features and labels size mismatch: %d vs %d", len(features), len(labels))
	}
	arity := len(features[0])
	if arity == 0 {
		return Dataset{}, fmt.Errorf("feature vectors must not be empty")
	}

	rows := make([][]float64, len(features))
	for i, f := range features {
		if len(f) != arity {
			return Dataset{}, fmt.Errorf("row %d has %d features, expected %d", i, len(f), arity)
		}
		for j, v := range f {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Dataset{}, fmt.Errorf("row %d feature %d is not finite", i, j)
			}
		}
		rows[i] = append([]float64(nil), f...)
	}
	for i, l := range labels {
		if l < 0 {
			return Dataset{}, fmt.Errorf("row %d has negative label %d", i, l)
		}
		if l >= MaxClasses {
			return Dataset{}, fmt.Errorf("row %d has label %d, labels must be below %d", i, l, MaxClasses)
		}
	}

	return Dataset{
		features: rows,
		labels:   append([]int(nil), labels...),
		arity:    arity,
	}, nil
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.labels) }

// Arity returns the number of features per row.
func (d Dataset) Arity() int { return d.arity }

// Features returns a copy of the feature matrix.
func (d Dataset) Features() [][]float64 {
	return lo.Map(d.features, func(row []float64, _ int) []float64 {
		return append([]float64(nil), row...)
	})
}

// Labels returns a copy of the labels.
func (d Dataset) Labels() []int { return append([]int(nil), d.labels...) }

// Row returns a copy of the i-th feature vector and its label.
func (d Dataset) Row(i int) ([]float64, int) {
	return append([]float64(nil), d.features[i]...), d.labels[i]
}

// NumClasses returns max(label)+1, the size of the class identifier space.
func (d Dataset) NumClasses() int {
	if len(d.labels) == 0 {
		return 0
	}
	return lo.Max(d.labels) + 1
}

// Classes returns the distinct labels in first-seen order.
func (d Dataset) Classes() []int { return lo.Uniq(d.labels) }

// Split partitions the dataset into train and test sets using a seeded permutation.
// The test set holds ceil(n*testFraction) rows. The same seed always yields the same partition.
func (d Dataset) Split(testFraction float64, seed int64) (train, test Dataset, err error) {
	if !(testFraction > 0 && testFraction < 1) {
		return Dataset{}, Dataset{}, fmt.Errorf("%w: test fraction must be in (0, 1), got %v",
			domain.ErrInvalidSplit, testFraction)
	}
	n := d.Len()
	nTest := int(math.Ceil(testFraction * float64(n)))
	nTrain := n - nTest
	if nTest < 1 || nTrain < 1 {
		return Dataset{}, Dataset{}, fmt.Errorf("%w: %d rows cannot be split with test fraction %v",
			domain.ErrInvalidSplit, n, testFraction)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducibility, not security

	test = d.subset(perm[:nTest])
	train = d.subset(perm[nTest:])
	return train, test, nil
}

func (d Dataset) subset(idx []int) Dataset {
	features := make([][]float64, len(idx))
	labels := make([]int, len(idx))
	for i, j := range idx {
		features[i] = d.features[j]
		labels[i] = d.labels[j]
	}
	return Dataset{features: features, labels: labels, arity: d.arity}
}
