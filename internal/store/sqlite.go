package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lox/homeenergy/internal/household"
	"github.com/lox/homeenergy/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const estimateColumns = `id, created_at, model_name, num_occupants, house_size_sqft, monthly_income, outside_temp_celsius,
	year, month, day, heating_type, cooling_type, manual_override, energy_star_home, kwh, features_json, insight`

func (s *Store) InsertEstimate(e models.Estimate) error {
	featuresJSON, err := json.Marshal(e.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	in := e.Input
	_, err = s.db.Exec(`
		INSERT INTO estimates (`+estimateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.CreatedAt.UTC(), e.ModelName, in.NumOccupants, in.HouseSizeSqft, in.MonthlyIncome, in.OutsideTempCelsius,
		in.Year, in.Month, in.Day, in.HeatingType.String(), in.CoolingType.String(), in.ManualOverride.String(),
		in.EnergyStarHome, e.KWh, string(featuresJSON), e.Insight)
	return err
}

// GetEstimate returns nil, nil when no estimate has the given id.
func (s *Store) GetEstimate(id string) (*models.Estimate, error) {
	row := s.db.QueryRow(`SELECT `+estimateColumns+` FROM estimates WHERE id = ?`, id)
	e, err := scanEstimate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListEstimates returns the most recent estimates, newest first.
func (s *Store) ListEstimates(limit int) ([]models.Estimate, error) {
	rows, err := s.db.Query(`
		SELECT `+estimateColumns+`
		FROM estimates
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var estimates []models.Estimate
	for rows.Next() {
		e, err := scanEstimate(rows)
		if err != nil {
			return nil, err
		}
		estimates = append(estimates, *e)
	}
	return estimates, rows.Err()
}

func (s *Store) EstimateStats() (models.EstimateStats, error) {
	var stats models.EstimateStats
	err := s.db.QueryRow(`
		SELECT COUNT(*), AVG(kwh), MIN(kwh), MAX(kwh) FROM estimates
	`).Scan(&stats.Count, &stats.AvgKWh, &stats.MinKWh, &stats.MaxKWh)
	return stats, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEstimate(sc scanner) (*models.Estimate, error) {
	var (
		e                          models.Estimate
		heating, cooling, override string
		featuresJSON               string
	)
	err := sc.Scan(&e.ID, &e.CreatedAt, &e.ModelName, &e.Input.NumOccupants, &e.Input.HouseSizeSqft, &e.Input.MonthlyIncome,
		&e.Input.OutsideTempCelsius, &e.Input.Year, &e.Input.Month, &e.Input.Day, &heating, &cooling, &override,
		&e.Input.EnergyStarHome, &e.KWh, &featuresJSON, &e.Insight)
	if err != nil {
		return nil, err
	}

	if e.Input.HeatingType, err = household.ParseHeatingType(heating); err != nil {
		return nil, fmt.Errorf("estimate %s: %w", e.ID, err)
	}
	if e.Input.CoolingType, err = household.ParseCoolingType(cooling); err != nil {
		return nil, fmt.Errorf("estimate %s: %w", e.ID, err)
	}
	if e.Input.ManualOverride, err = household.ParseManualOverride(override); err != nil {
		return nil, fmt.Errorf("estimate %s: %w", e.ID, err)
	}
	if err := json.Unmarshal([]byte(featuresJSON), &e.Features); err != nil {
		return nil, fmt.Errorf("estimate %s: %w", e.ID, err)
	}
	return &e, nil
}
