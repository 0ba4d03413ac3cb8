package artifact

import (
	"fmt"

	domsvc "CryptoLiquidity/internal/domain/service"
)

// Model kinds.
const (
	ModelRandomForest = "random_forest"
	ModelDecisionTree = "decision_tree"
	ModelLinear       = "linear"
)

// LoadScaler reads a fitted scaler from path and checks it against schema.
// Every error wraps domsvc.ErrArtifactLoad.
func LoadScaler(path string, schema Schema) (*AffineScaler, error) {
	var d scalerDoc
	if err := readDocument(path, &d); err != nil {
		return nil, loadErr("scaler", path, err)
	}
	if err := checkHeader(d.Schema, d.Features, d.NFeatures, schema); err != nil {
		return nil, loadErr("scaler", path, err)
	}
	s, err := scalerFromDoc(&d, schema.Width())
	if err != nil {
		return nil, loadErr("scaler", path, err)
	}
	if err := domsvc.CheckWidth("scaler", schema.Width(), s.Width()); err != nil {
		return nil, loadErr("scaler", path, err)
	}
	return s, nil
}

// LoadModel reads a fitted regressor from path and checks it against schema.
// Every error wraps domsvc.ErrArtifactLoad.
func LoadModel(path string, schema Schema) (domsvc.Predictor, error) {
	var d modelDoc
	if err := readDocument(path, &d); err != nil {
		return nil, loadErr("model", path, err)
	}
	if err := checkHeader(d.Schema, d.Features, d.NFeatures, schema); err != nil {
		return nil, loadErr("model", path, err)
	}
	m, err := modelFromDoc(&d, schema.Width())
	if err != nil {
		return nil, loadErr("model", path, err)
	}
	if err := domsvc.CheckWidth("model", schema.Width(), m.Width()); err != nil {
		return nil, loadErr("model", path, err)
	}
	return m, nil
}

func modelFromDoc(d *modelDoc, width int) (domsvc.Predictor, error) {
	switch d.Kind {
	case ModelRandomForest:
		trees := make([]*RegressionTree, 0, len(d.Trees))
		for i := range d.Trees {
			t, err := treeFromDoc(&d.Trees[i], width)
			if err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
			trees = append(trees, t)
		}
		return forestOrNil(NewForest(d.Kind, width, trees))
	case ModelDecisionTree:
		if d.Tree == nil {
			return nil, fmt.Errorf("decision_tree requires tree")
		}
		t, err := treeFromDoc(d.Tree, width)
		if err != nil {
			return nil, err
		}
		return forestOrNil(NewForest(d.Kind, width, []*RegressionTree{t}))
	case ModelLinear:
		m, err := NewLinear(d.Coef, d.Intercept)
		if err != nil {
			return nil, err
		}
		return m, nil
	case "":
		return nil, fmt.Errorf("missing kind")
	default:
		return nil, fmt.Errorf("unknown model kind %q", d.Kind)
	}
}

func forestOrNil(f *Forest, err error) (domsvc.Predictor, error) {
	if err != nil {
		return nil, err
	}
	return f, nil
}

func treeFromDoc(d *treeDoc, width int) (*RegressionTree, error) {
	return NewRegressionTree(d.ChildrenLeft, d.ChildrenRight, d.Feature, d.Threshold, d.Value, width)
}

func loadErr(what, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", domsvc.ErrArtifactLoad, what, path, err)
}
