package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/lox/homeenergy/internal/estimator"
	"github.com/lox/homeenergy/internal/features"
	"github.com/lox/homeenergy/internal/household"
	"github.com/lox/homeenergy/internal/models"
)

const (
	maxBodyBytes   = 64 << 10
	defaultLimit   = 20
	maxLimit       = 200
	insightTimeout = 20 * time.Second
)

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var in household.Input
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.pipeline.Estimate(in)
	if err != nil {
		writeError(w, err)
		return
	}

	e := models.Estimate{
		ID:        s.newID(),
		CreatedAt: s.now().UTC(),
		ModelName: s.pipeline.ModelName(),
		Input:     in,
		KWh:       res.KWh,
		Features:  res.Features,
	}

	if s.insights != nil && r.URL.Query().Get("insight") == "1" {
		ctx, cancel := context.WithTimeout(r.Context(), insightTimeout)
		text, err := s.insights.Generate(ctx, in, res.KWh)
		cancel()
		if err != nil {
			log.Printf("api: insight for %s: %v", e.ID, err)
		} else {
			e.Insight = sql.NullString{String: text, Valid: true}
		}
	}

	if s.store != nil {
		if err := s.store.InsertEstimate(e); err != nil {
			log.Printf("api: record estimate %s: %v", e.ID, err)
			e.ID = ""
		}
	} else {
		e.ID = ""
	}

	writeJSON(w, http.StatusOK, estimateResponse(e))
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	v, err := features.FromFields(req.Features)
	if err != nil {
		writeError(w, err)
		return
	}

	kwh, err := s.pipeline.Predict(v)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PredictResponse{Model: s.pipeline.ModelName(), KWh: kwh})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SchemaResponse{Count: features.Len, Features: features.Names()})
}

func (s *Server) handleListEstimates(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "estimate history disabled", http.StatusNotFound)
		return
	}

	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxLimit)
	}

	estimates, err := s.store.ListEstimates(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	stats, err := s.store.EstimateStats()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := HistoryResponse{
		Estimates: make([]EstimateResponse, 0, len(estimates)),
		Count:     stats.Count,
	}
	for _, e := range estimates {
		resp.Estimates = append(resp.Estimates, estimateResponse(e))
	}
	if stats.AvgKWh.Valid {
		resp.AvgKWh = &stats.AvgKWh.Float64
		resp.MinKWh = &stats.MinKWh.Float64
		resp.MaxKWh = &stats.MaxKWh.Float64
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetEstimate(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "estimate history disabled", http.StatusNotFound)
		return
	}

	e, err := s.store.GetEstimate(r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if e == nil {
		http.Error(w, "estimate not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, estimateResponse(*e))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:  "ok",
		Model:   s.pipeline.ModelName(),
		History: s.store != nil,
	}

	if s.store != nil {
		version, err := s.store.MigrationVersion()
		if err != nil {
			health.Status = "error"
			health.Error = err.Error()
		}
		health.MigrationVersion = version
	}

	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var verr *household.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return &requestError{err: err}
	}
	return nil
}

type requestError struct {
	err error
}

func (e *requestError) Error() string { return "invalid request body: " + e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

// writeError maps pipeline failures onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		verr *household.ValidationError
		derr *features.InvalidDateError
		serr *features.SchemaMismatchError
		perr *estimator.PredictorError
		rerr *requestError
	)

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Kind: "validation", Violations: verr.Violations})
	case errors.As(err, &derr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: derr.Error(), Kind: "invalid_date"})
	case errors.As(err, &rerr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: rerr.Error(), Kind: "bad_request"})
	case errors.As(err, &serr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: serr.Error(), Kind: "schema_mismatch"})
	case errors.As(err, &perr):
		log.Printf("api: %v", perr)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: perr.Error(), Kind: "predictor"})
	default:
		log.Printf("api: %v", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Kind: "internal"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}
