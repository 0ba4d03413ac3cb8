package artifact

import (
	"context"
	"fmt"

	"CryptoLiquidity/internal/domain/models"
	domsvc "CryptoLiquidity/internal/domain/service"
	"CryptoLiquidity/internal/services/features"
)

const leaf = -1

// RegressionTree is a binary regression tree in flat array form, as exported
// from sklearn's tree_ attribute. Node i is a leaf when left[i] == -1.
type RegressionTree struct {
	left      []int
	right     []int
	feature   []int
	threshold []float64
	value     []float64
}

// NewRegressionTree validates the arrays and returns a tree over width features.
// Children must point forward (child index > parent index) so evaluation always
// terminates; sklearn's depth-first node numbering satisfies this.
func NewRegressionTree(left, right, feature []int, threshold, value []float64, width int) (*RegressionTree, error) {
	n := len(left)
	if n == 0 {
		return nil, fmt.Errorf("tree has no nodes")
	}
	if len(right) != n || len(feature) != n || len(threshold) != n || len(value) != n {
		return nil, fmt.Errorf("tree arrays differ in length: left=%d right=%d feature=%d threshold=%d value=%d",
			n, len(right), len(feature), len(threshold), len(value))
	}
	if !features.AllFinite(threshold) || !features.AllFinite(value) {
		return nil, fmt.Errorf("tree thresholds or values contain NaN or Inf")
	}
	for i := 0; i < n; i++ {
		l, r := left[i], right[i]
		if l == leaf && r == leaf {
			continue
		}
		if l <= i || r <= i || l >= n || r >= n {
			return nil, fmt.Errorf("node %d has invalid children %d/%d", i, l, r)
		}
		if feature[i] < 0 || feature[i] >= width {
			return nil, fmt.Errorf("node %d splits on feature %d, width is %d", i, feature[i], width)
		}
	}
	return &RegressionTree{left: left, right: right, feature: feature, threshold: threshold, value: value}, nil
}

// Nodes returns the number of nodes.
func (t *RegressionTree) Nodes() int { return len(t.left) }

func (t *RegressionTree) eval(x []float64) float64 {
	i := 0
	for t.left[i] != leaf {
		if x[t.feature[i]] <= t.threshold[i] {
			i = t.left[i]
		} else {
			i = t.right[i]
		}
	}
	return t.value[i]
}

// Forest averages the predictions of its trees. A single-tree forest is a
// plain decision tree regressor.
type Forest struct {
	kind  string
	width int
	trees []*RegressionTree
}

// NewForest returns a forest over width features.
func NewForest(kind string, width int, trees []*RegressionTree) (*Forest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}
	return &Forest{kind: kind, width: width, trees: trees}, nil
}

// Kind returns the model kind it was loaded as.
func (f *Forest) Kind() string { return f.kind }

// Width returns the fitted number of features.
func (f *Forest) Width() int { return f.width }

// Trees returns the number of trees.
func (f *Forest) Trees() int { return len(f.trees) }

// Predict returns the mean leaf value across trees.
func (f *Forest) Predict(_ context.Context, v models.NormalizedVector) (models.PredictionResult, error) {
	if err := domsvc.CheckWidth("model", f.width, len(v)); err != nil {
		return 0, err
	}
	if !features.AllFinite(v) {
		return 0, &domsvc.PredictionError{Stage: "model", Err: errNonFiniteInput}
	}
	sum := 0.0
	for _, t := range f.trees {
		sum += t.eval(v)
	}
	return checkOutput(sum / float64(len(f.trees)))
}

var _ domsvc.Predictor = (*Forest)(nil)
