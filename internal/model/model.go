// Package model evaluates trained energy-consumption models exported as
// JSON or YAML artifacts. A loaded Model is read-only and safe to share
// between requests.
package model

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/lox/homeenergy/internal/artifact"
	"github.com/lox/homeenergy/internal/features"
	"github.com/lox/homeenergy/internal/metrics"
)

type Model struct {
	name      string
	kind      Kind
	intercept float64
	weights   [features.Len]float64
	trees     []tree
}

type tree []node

type node struct {
	feature     int
	threshold   float64
	left, right int
	value       float64
}

func (m *Model) Name() string { return m.name }

func (m *Model) Kind() Kind { return m.kind }

// Trees returns the number of trees in a forest model, zero for linear.
func (m *Model) Trees() int { return len(m.trees) }

// Estimate returns the predicted monthly consumption in kWh.
func (m *Model) Estimate(v features.Vector) (float64, error) {
	x := v.Values()

	var y float64
	switch m.kind {
	case KindLinear:
		y = m.intercept
		for i, w := range m.weights {
			if w == 0 {
				continue
			}
			y += w * x[i]
		}
	case KindForest:
		for _, t := range m.trees {
			y += t.eval(x)
		}
		y /= float64(len(m.trees))
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, m.kind)
	}

	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("model %s: non-finite estimate", m.name)
	}
	return y, nil
}

func (t tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t[i]
		if n.left < 0 {
			return n.value
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// Parse decodes and compiles an artifact.
func Parse(data []byte, format string) (*Model, error) {
	a, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return Compile(a)
}

// Load fetches the artifact at src (path, http(s):// or ftp:// URL) and
// compiles it. Call once at startup and share the result.
func Load(ctx context.Context, src string) (*Model, error) {
	data, err := artifact.NewFetcher().Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("fetch model: %w", err)
	}

	m, err := Parse(data, artifact.Format(src))
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", src, err)
	}

	metrics.ModelInfo.WithLabelValues(m.name, string(m.kind)).Set(1)
	log.Printf("model: loaded %s (%s, %d features, %d trees) from %s", m.name, m.kind, features.Len, len(m.trees), src)
	return m, nil
}
