package models

import (
	"database/sql"
	"time"

	"github.com/lox/homeenergy/internal/features"
	"github.com/lox/homeenergy/internal/household"
)

// Estimate is one stored estimation: the raw input, the encoded features
// sent to the model and the model's answer.
type Estimate struct {
	ID        string
	CreatedAt time.Time
	ModelName string
	Input     household.Input
	KWh       float64
	Features  features.Vector
	Insight   sql.NullString
}

type EstimateStats struct {
	Count  int
	AvgKWh sql.NullFloat64
	MinKWh sql.NullFloat64
	MaxKWh sql.NullFloat64
}
