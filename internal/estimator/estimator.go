// Package estimator runs the estimation pipeline: validate the raw
// household input, encode it into features and ask the model for a
// monthly kWh figure.
package estimator

import (
	"errors"
	"fmt"
	"time"

	"github.com/lox/homeenergy/internal/features"
	"github.com/lox/homeenergy/internal/household"
	"github.com/lox/homeenergy/internal/metrics"
)

// Predictor maps an encoded feature vector to a monthly consumption
// estimate in kWh.
type Predictor interface {
	Estimate(v features.Vector) (float64, error)
}

// PredictorError wraps a failure returned by the Predictor. The original
// error is available through errors.Unwrap.
type PredictorError struct {
	Err error
}

func (e *PredictorError) Error() string {
	return fmt.Sprintf("predictor: %v", e.Err)
}

func (e *PredictorError) Unwrap() error {
	return e.Err
}

type Result struct {
	KWh      float64         `json:"kwh"`
	Features features.Vector `json:"features"`
}

// Pipeline holds the loaded predictor. It has no mutable state and may be
// shared by concurrent requests if the predictor can.
type Pipeline struct {
	predictor Predictor
}

func New(p Predictor) *Pipeline {
	return &Pipeline{predictor: p}
}

// ModelName returns the predictor's name when it has one.
func (p *Pipeline) ModelName() string {
	if named, ok := p.predictor.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "unknown"
}

// Estimate validates in, encodes it and runs the predictor. Errors are
// returned unchanged: *household.ValidationError, *features.InvalidDateError
// or *PredictorError.
func (p *Pipeline) Estimate(in household.Input) (*Result, error) {
	start := time.Now()

	if err := in.Validate(); err != nil {
		metrics.EstimatesTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	v, err := features.Encode(in)
	if err != nil {
		metrics.EstimatesTotal.WithLabelValues("invalid_date").Inc()
		return nil, err
	}

	kwh, err := p.predict(v)
	if err != nil {
		return nil, err
	}

	metrics.EstimateLatency.Observe(time.Since(start).Seconds())
	return &Result{KWh: kwh, Features: v}, nil
}

// Predict runs the predictor on an already encoded vector, for callers that
// supply features directly.
func (p *Pipeline) Predict(v features.Vector) (float64, error) {
	return p.predict(v)
}

func (p *Pipeline) predict(v features.Vector) (float64, error) {
	kwh, err := p.predictor.Estimate(v)
	if err != nil {
		var serr *features.SchemaMismatchError
		if errors.As(err, &serr) {
			metrics.EstimatesTotal.WithLabelValues("schema_mismatch").Inc()
			return 0, err
		}
		metrics.EstimatesTotal.WithLabelValues("predictor_error").Inc()
		return 0, &PredictorError{Err: err}
	}

	metrics.EstimatesTotal.WithLabelValues("ok").Inc()
	metrics.PredictedKWh.Observe(kwh)
	return kwh, nil
}
