package domain

// Model is the capability the serving core needs from a fitted classifier.
// Implementations must be safe for concurrent use once constructed.
type Model interface {
	// Predict evaluates a batch of feature vectors and returns one class per row.
	Predict(batch [][]float64) ([]int, error)
	// ExpectedArity returns the number of features the model was fitted on.
	ExpectedArity() int
}

// CheckArity returns an InputShapeError if features does not match the arity.
func CheckArity(expected int, features []float64) error {
	if len(features) != expected {
		return NewInputShapeError(expected, len(features))
	}
	return nil
}
