package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/lox/homeenergy/internal/features"
)

type Kind string

const (
	KindLinear Kind = "linear"
	KindForest Kind = "forest"
)

var (
	ErrUnknownKind    = errors.New("unknown model kind")
	ErrUnknownFeature = errors.New("unknown feature")
	ErrMalformedTree  = errors.New("malformed tree")
)

// Artifact is the serialized form of a trained model, as exported by the
// training pipeline.
type Artifact struct {
	Name         string             `json:"name" yaml:"name"`
	Kind         Kind               `json:"kind" yaml:"kind"`
	FeatureNames []string           `json:"feature_names" yaml:"feature_names"`
	Intercept    float64            `json:"intercept,omitempty" yaml:"intercept,omitempty"`
	Coefficients map[string]float64 `json:"coefficients,omitempty" yaml:"coefficients,omitempty"`
	Trees        []Tree             `json:"trees,omitempty" yaml:"trees,omitempty"`
}

// Tree is one regression tree in node-array form. Node 0 is the root; a
// node with Left and Right both -1 is a leaf. Samples with
// x[Feature] <= Threshold go left.
type Tree struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

type Node struct {
	Feature   string  `json:"feature,omitempty" yaml:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Left      int     `json:"left" yaml:"left"`
	Right     int     `json:"right" yaml:"right"`
	Value     float64 `json:"value,omitempty" yaml:"value,omitempty"`
}

func (n Node) IsLeaf() bool {
	return n.Left == -1 && n.Right == -1
}

// Decode parses an artifact in the given format ("json" or "yaml").
// Unknown keys are rejected.
func Decode(data []byte, format string) (Artifact, error) {
	var a Artifact
	switch format {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&a); err != nil {
			return Artifact{}, fmt.Errorf("decode yaml artifact: %w", err)
		}
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&a); err != nil {
			return Artifact{}, fmt.Errorf("decode json artifact: %w", err)
		}
	default:
		return Artifact{}, fmt.Errorf("unknown artifact format %q", format)
	}
	return a, nil
}

// Compile validates an artifact against the encoder schema and prepares it
// for evaluation.
func Compile(a Artifact) (*Model, error) {
	if err := features.CheckNames(a.FeatureNames); err != nil {
		return nil, err
	}

	m := &Model{name: a.Name, kind: a.Kind, intercept: a.Intercept}
	if m.name == "" {
		m.name = "unnamed"
	}

	switch a.Kind {
	case KindLinear:
		if len(a.Trees) > 0 {
			return nil, fmt.Errorf("linear model %q has trees", m.name)
		}
		for name, w := range a.Coefficients {
			i, ok := features.Index(name)
			if !ok {
				return nil, fmt.Errorf("%w: coefficient %q", ErrUnknownFeature, name)
			}
			m.weights[i] = w
		}
	case KindForest:
		if len(a.Trees) == 0 {
			return nil, fmt.Errorf("forest model %q has no trees", m.name)
		}
		if len(a.Coefficients) > 0 {
			return nil, fmt.Errorf("forest model %q has coefficients", m.name)
		}
		for ti, t := range a.Trees {
			ct, err := compileTree(t)
			if err != nil {
				return nil, fmt.Errorf("tree %d: %w", ti, err)
			}
			m.trees = append(m.trees, ct)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, a.Kind)
	}

	return m, nil
}

func compileTree(t Tree) (tree, error) {
	if len(t.Nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrMalformedTree)
	}

	out := make(tree, len(t.Nodes))
	for i, n := range t.Nodes {
		if n.IsLeaf() {
			out[i] = node{left: -1, right: -1, value: n.Value}
			continue
		}
		// Children always come after their parent, which rules out cycles.
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return nil, fmt.Errorf("%w: node %d has children %d/%d", ErrMalformedTree, i, n.Left, n.Right)
		}
		col, ok := features.Index(n.Feature)
		if !ok {
			return nil, fmt.Errorf("%w: node %d splits on %q", ErrUnknownFeature, i, n.Feature)
		}
		out[i] = node{feature: col, threshold: n.Threshold, left: n.Left, right: n.Right}
	}
	return out, nil
}
