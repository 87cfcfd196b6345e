package forest

import (
	"fmt"
	"math/rand"
	"sort"
)

// Node is one entry of a flattened binary decision tree.
// Internal nodes route x to Left when x[Feature] <= Threshold, else to Right.
// Children always sit at higher indexes than their parent.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Leaf      bool    `json:"leaf"`
	Class     int     `json:"class"`
}

// Tree is a fitted decision tree stored as a flat node array rooted at index 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t Tree) predict(x []float64) int {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Class
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Depth returns the length of the longest root-to-leaf path in edges.
func (t Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.Leaf {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return walk(0)
}

func (t Tree) validate(arity, numClasses int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			if n.Class < 0 || n.Class >= numClasses {
				return fmt.Errorf("node %d: class %d out of range [0, %d)", i, n.Class, numClasses)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= arity {
			return fmt.Errorf("node %d: feature %d out of range [0, %d)", i, n.Feature, arity)
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

// treeBuilder grows one CART tree with gini impurity over a row subset.
type treeBuilder struct {
	features   [][]float64
	labels     []int
	numClasses int
	params     Params
	rng        *rand.Rand
	nodes      []Node
}

func (b *treeBuilder) build(rows []int, depth int) int {
	counts := b.classCounts(rows)
	self := len(b.nodes)
	b.nodes = append(b.nodes, Node{Leaf: true, Class: argmax(counts)})

	if depth >= b.params.MaxDepth || len(rows) < b.params.MinSamplesSplit || isPure(counts) {
		return self
	}

	feature, threshold, ok := b.bestSplit(rows)
	if !ok {
		return self
	}

	var left, right []int
	for _, r := range rows {
		if b.features[r][feature] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[self] = Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      l,
		Right:     r,
		Class:     b.nodes[self].Class,
	}
	return self
}

// bestSplit evaluates at least MaxFeatures randomly ordered features and keeps
// going past that budget only while no valid split has been found.
func (b *treeBuilder) bestSplit(rows []int) (int, float64, bool) {
	arity := len(b.features[0])
	order := b.rng.Perm(arity)

	bestFeature, bestThreshold := -1, 0.0
	bestImpurity := 2.0
	for visited, f := range order {
		if visited >= b.params.MaxFeatures && bestFeature >= 0 {
			break
		}
		threshold, impurity, ok := b.splitFeature(rows, f)
		if ok && impurity < bestImpurity {
			bestFeature, bestThreshold, bestImpurity = f, threshold, impurity
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

// splitFeature sweeps the sorted values of one feature and returns the midpoint
// threshold with the lowest weighted gini impurity.
func (b *treeBuilder) splitFeature(rows []int, f int) (float64, float64, bool) {
	sorted := append([]int(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return b.features[sorted[i]][f] < b.features[sorted[j]][f]
	})

	total := b.classCounts(sorted)
	left := make([]int, b.numClasses)
	n := len(sorted)

	bestThreshold, bestImpurity, found := 0.0, 2.0, false
	for i := 1; i < n; i++ {
		left[b.labels[sorted[i-1]]]++
		prev := b.features[sorted[i-1]][f]
		cur := b.features[sorted[i]][f]
		if prev == cur {
			continue
		}
		right := make([]int, b.numClasses)
		for c := range right {
			right[c] = total[c] - left[c]
		}
		impurity := (float64(i)*gini(left, i) + float64(n-i)*gini(right, n-i)) / float64(n)
		if impurity < bestImpurity {
			bestThreshold = prev + (cur-prev)/2
			bestImpurity = impurity
			found = true
		}
	}
	return bestThreshold, bestImpurity, found
}

func (b *treeBuilder) classCounts(rows []int) []int {
	counts := make([]int, b.numClasses)
	for _, r := range rows {
		counts[b.labels[r]]++
	}
	return counts
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		impurity -= p * p
	}
	return impurity
}

// argmax returns the index of the largest count; ties go to the lowest index.
func argmax(counts []int) int {
	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return best
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}
