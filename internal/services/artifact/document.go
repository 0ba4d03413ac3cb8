package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Schema is the feature layout an artifact must have been fitted on.
type Schema struct {
	Version string
	Fields  []string
}

// Width returns the number of features in the schema.
func (s Schema) Width() int { return len(s.Fields) }

// pickle protocol 2+ streams start with the PROTO opcode.
const pickleProto = 0x80

type scalerDoc struct {
	Kind      string    `json:"kind" yaml:"kind"`
	Schema    string    `json:"schema" yaml:"schema"`
	Features  []string  `json:"features" yaml:"features"`
	NFeatures int       `json:"n_features_in" yaml:"n_features_in"`
	Mean      []float64 `json:"mean" yaml:"mean"`
	Center    []float64 `json:"center" yaml:"center"`
	Min       []float64 `json:"min" yaml:"min"`
	Scale     []float64 `json:"scale" yaml:"scale"`
}

type treeDoc struct {
	ChildrenLeft  []int     `json:"children_left" yaml:"children_left"`
	ChildrenRight []int     `json:"children_right" yaml:"children_right"`
	Feature       []int     `json:"feature" yaml:"feature"`
	Threshold     []float64 `json:"threshold" yaml:"threshold"`
	Value         []float64 `json:"value" yaml:"value"`
}

type modelDoc struct {
	Kind      string    `json:"kind" yaml:"kind"`
	Schema    string    `json:"schema" yaml:"schema"`
	Features  []string  `json:"features" yaml:"features"`
	NFeatures int       `json:"n_features_in" yaml:"n_features_in"`
	Trees     []treeDoc `json:"trees" yaml:"trees"`
	Tree      *treeDoc  `json:"tree" yaml:"tree"`
	Coef      []float64 `json:"coef" yaml:"coef"`
	Intercept float64   `json:"intercept" yaml:"intercept"`
}

// readDocument decodes path into dest. YAML is used for .yaml/.yml files,
// JSON for everything else regardless of extension.
func readDocument(path string, dest any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty file")
	}
	if trimmed[0] == pickleProto {
		return fmt.Errorf("python pickle/joblib dumps are not supported; export the artifact to JSON or use predictor.backend=http")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, dest); err != nil {
			return fmt.Errorf("parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(b, dest); err != nil {
			return fmt.Errorf("parse json: %w", err)
		}
	}
	return nil
}

// checkHeader validates the schema version and feature names declared by an artifact
// against the expected schema. Empty declarations are accepted.
func checkHeader(declaredSchema string, declaredFeatures []string, nFeatures int, want Schema) error {
	if declaredSchema != "" && want.Version != "" && declaredSchema != want.Version {
		return fmt.Errorf("schema %q does not match %q", declaredSchema, want.Version)
	}
	if len(declaredFeatures) > 0 {
		if len(declaredFeatures) != want.Width() {
			return fmt.Errorf("declares %d features, schema has %d", len(declaredFeatures), want.Width())
		}
		for i, f := range declaredFeatures {
			if f != want.Fields[i] {
				return fmt.Errorf("feature %d is %q, schema expects %q", i, f, want.Fields[i])
			}
		}
	}
	if nFeatures != 0 && nFeatures != want.Width() {
		return fmt.Errorf("n_features_in is %d, schema has %d", nFeatures, want.Width())
	}
	return nil
}
