package store

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/homeenergy/internal/features"
	"github.com/lox/homeenergy/internal/household"
	"github.com/lox/homeenergy/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func testEstimate(t *testing.T, id string, kwh float64, at time.Time) models.Estimate {
	t.Helper()
	in := household.Input{
		NumOccupants:       3,
		HouseSizeSqft:      1500,
		MonthlyIncome:      25000,
		OutsideTempCelsius: 27,
		Year:               2025,
		Month:              8,
		Day:                1,
		HeatingType:        household.HeatingGas,
		CoolingType:        household.CoolingFan,
		ManualOverride:     household.OverrideNo,
		EnergyStarHome:     true,
	}
	v, err := features.Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return models.Estimate{
		ID:        id,
		CreatedAt: at,
		ModelName: "household-linear",
		Input:     in,
		KWh:       kwh,
		Features:  v,
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	store := setupTestStore(t)
	if err := store.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	version, err := store.MigrationVersion()
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("version = %d, want %d", version, len(migrations))
	}
}

func TestInsertAndGetEstimate(t *testing.T) {
	store := setupTestStore(t)
	at := time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC)

	e := testEstimate(t, "est-1", 612.25, at)
	e.Insight = sql.NullString{String: "Switch to LED lighting.", Valid: true}
	if err := store.InsertEstimate(e); err != nil {
		t.Fatalf("InsertEstimate: %v", err)
	}

	got, err := store.GetEstimate("est-1")
	if err != nil {
		t.Fatalf("GetEstimate: %v", err)
	}
	if got == nil {
		t.Fatal("GetEstimate returned nil")
	}
	if got.Input != e.Input {
		t.Errorf("Input = %+v, want %+v", got.Input, e.Input)
	}
	if got.KWh != 612.25 {
		t.Errorf("KWh = %v, want 612.25", got.KWh)
	}
	if got.Features != e.Features {
		t.Error("Features did not round-trip")
	}
	if !got.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, at)
	}
	if got.Insight.String != "Switch to LED lighting." {
		t.Errorf("Insight = %q", got.Insight.String)
	}
}

func TestGetEstimate_Missing(t *testing.T) {
	store := setupTestStore(t)
	got, err := store.GetEstimate("nope")
	if err != nil {
		t.Fatalf("GetEstimate: %v", err)
	}
	if got != nil {
		t.Errorf("GetEstimate = %+v, want nil", got)
	}
}

func TestInsertEstimate_DuplicateID(t *testing.T) {
	store := setupTestStore(t)
	e := testEstimate(t, "dup", 100, time.Now())
	if err := store.InsertEstimate(e); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := store.InsertEstimate(e); err == nil {
		t.Error("expected error inserting duplicate id")
	}
}

func TestListEstimatesAndStats(t *testing.T) {
	store := setupTestStore(t)

	stats, err := store.EstimateStats()
	if err != nil {
		t.Fatalf("EstimateStats (empty): %v", err)
	}
	if stats.Count != 0 || stats.AvgKWh.Valid {
		t.Errorf("empty stats = %+v", stats)
	}

	base := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, kwh := range []float64{300, 500, 700} {
		e := testEstimate(t, string(rune('a'+i)), kwh, base.Add(time.Duration(i)*time.Hour))
		if err := store.InsertEstimate(e); err != nil {
			t.Fatalf("InsertEstimate: %v", err)
		}
	}

	list, err := store.ListEstimates(2)
	if err != nil {
		t.Fatalf("ListEstimates: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	if list[0].ID != "c" || list[1].ID != "b" {
		t.Errorf("order = %s,%s; want c,b", list[0].ID, list[1].ID)
	}

	stats, err = store.EstimateStats()
	if err != nil {
		t.Fatalf("EstimateStats: %v", err)
	}
	if stats.Count != 3 {
		t.Errorf("Count = %d, want 3", stats.Count)
	}
	if stats.AvgKWh.Float64 != 500 || stats.MinKWh.Float64 != 300 || stats.MaxKWh.Float64 != 700 {
		t.Errorf("stats = %+v", stats)
	}
}
