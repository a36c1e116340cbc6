package api

import (
	"time"

	"github.com/lox/homeenergy/internal/features"
	"github.com/lox/homeenergy/internal/household"
	"github.com/lox/homeenergy/internal/models"
)

type EstimateResponse struct {
	ID        string          `json:"id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Model     string          `json:"model"`
	KWh       float64         `json:"kwh"`
	Input     household.Input `json:"input"`
	Features  features.Vector `json:"features"`
	Insight   string          `json:"insight,omitempty"`
}

func estimateResponse(e models.Estimate) EstimateResponse {
	return EstimateResponse{
		ID:        e.ID,
		CreatedAt: e.CreatedAt,
		Model:     e.ModelName,
		KWh:       e.KWh,
		Input:     e.Input,
		Features:  e.Features,
		Insight:   e.Insight.String,
	}
}

type PredictRequest struct {
	Features []features.Field `json:"features"`
}

type PredictResponse struct {
	Model string  `json:"model"`
	KWh   float64 `json:"kwh"`
}

type SchemaResponse struct {
	Count    int      `json:"count"`
	Features []string `json:"features"`
}

type HistoryResponse struct {
	Estimates []EstimateResponse `json:"estimates"`
	Count     int                `json:"count"`
	AvgKWh    *float64           `json:"avg_kwh,omitempty"`
	MinKWh    *float64           `json:"min_kwh,omitempty"`
	MaxKWh    *float64           `json:"max_kwh,omitempty"`
}

type HealthStatus struct {
	Status           string `json:"status"`
	Model            string `json:"model"`
	History          bool   `json:"history"`
	MigrationVersion int    `json:"migration_version,omitempty"`
	Error            string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error      string                `json:"error"`
	Kind       string                `json:"kind"`
	Violations []household.Violation `json:"violations,omitempty"`
}
