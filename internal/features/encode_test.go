package features

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/lox/homeenergy/internal/household"
)

func scenarioInput() household.Input {
	return household.Input{
		NumOccupants:       3,
		HouseSizeSqft:      1500,
		MonthlyIncome:      25000,
		OutsideTempCelsius: 27,
		Year:               2025,
		Month:              8,
		Day:                1,
		HeatingType:        household.HeatingElectric,
		CoolingType:        household.CoolingAC,
		ManualOverride:     household.OverrideYes,
		EnergyStarHome:     false,
	}
}

func mustEncode(t *testing.T, in household.Input) Vector {
	t.Helper()
	v, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return v
}

func TestEncode_Scenario(t *testing.T) {
	v := mustEncode(t, scenarioInput())

	want := map[string]float64{
		"num_occupants":          3,
		"house_size_sqft":        1500,
		"monthly_income":         25000,
		"outside_temp_celsius":   27,
		"year":                   2025,
		"month":                  8,
		"day":                    1,
		"heating_type_Electric":  1,
		"heating_type_Gas":       0,
		"heating_type_None":      0,
		"cooling_type_AC":        1,
		"cooling_type_Fan":       0,
		"cooling_type_None":      0,
		"manual_override_Y":      1,
		"manual_override_N":      0,
		"is_weekend":             0,
		"temp_above_avg":         0,
		"income_per_person":      25000.0 / 3,
		"square_feet_per_person": 500,
		"high_income_flag":       0,
		"low_temp_flag":          1,
		"season_spring":          0,
		"season_summer":          0,
		"season_fall":            1,
		"season_winter":          0,
		"day_of_week_0":          0,
		"day_of_week_6":          0,
		"energy_star_home":       0,
	}

	if len(want) != Len {
		t.Fatalf("scenario lists %d fields, schema has %d", len(want), Len)
	}
	for name, w := range want {
		got, ok := v.Get(name)
		if !ok {
			t.Errorf("missing feature %q", name)
			continue
		}
		if math.Abs(got-w) > 1e-9 {
			t.Errorf("%s = %v, want %v", name, got, w)
		}
	}

	dow, err := Weekday(2025, 8, 1)
	if err != nil {
		t.Fatalf("Weekday: %v", err)
	}
	if dow != 4 {
		t.Errorf("Weekday(2025-08-01) = %d, want 4 (Friday)", dow)
	}
}

func TestEncode_FieldOrder(t *testing.T) {
	want := []string{
		"num_occupants", "house_size_sqft", "monthly_income", "outside_temp_celsius",
		"year", "month", "day",
		"heating_type_Electric", "heating_type_Gas", "heating_type_None",
		"cooling_type_AC", "cooling_type_Fan", "cooling_type_None",
		"manual_override_Y", "manual_override_N",
		"is_weekend", "temp_above_avg", "income_per_person", "square_feet_per_person",
		"high_income_flag", "low_temp_flag",
		"season_spring", "season_summer", "season_fall", "season_winter",
		"day_of_week_0", "day_of_week_6", "energy_star_home",
	}

	got := mustEncode(t, scenarioInput()).Fields()
	if len(got) != len(want) {
		t.Fatalf("got %d fields, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i] {
			t.Errorf("field %d = %q, want %q", i, got[i].Name, want[i])
		}
	}
}

func TestEncode_Deterministic(t *testing.T) {
	in := scenarioInput()
	a := mustEncode(t, in)
	b := mustEncode(t, in)
	if a != b {
		t.Errorf("Encode not deterministic: %v vs %v", a.Values(), b.Values())
	}
	for i, x := range a.Values() {
		if math.Float64bits(x) != math.Float64bits(b.At(i)) {
			t.Errorf("column %d differs bitwise", i)
		}
	}
}

func TestEncode_OneHotExclusive(t *testing.T) {
	heatings := []household.HeatingType{household.HeatingElectric, household.HeatingGas, household.HeatingNone}
	coolings := []household.CoolingType{household.CoolingAC, household.CoolingFan, household.CoolingNone}
	overrides := []household.ManualOverride{household.OverrideYes, household.OverrideNo}

	groups := [][]int{
		{HeatingElectric, HeatingGas, HeatingNone},
		{CoolingAC, CoolingFan, CoolingNone},
		{OverrideY, OverrideN},
		{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter},
	}

	for hi, h := range heatings {
		for ci, c := range coolings {
			for oi, o := range overrides {
				in := scenarioInput()
				in.HeatingType, in.CoolingType, in.ManualOverride = h, c, o
				v := mustEncode(t, in)

				for gi, group := range groups {
					sum := 0.0
					for _, col := range group {
						sum += v.At(col)
					}
					if sum != 1 {
						t.Errorf("%v/%v/%v: group %d sums to %v, want 1", h, c, o, gi, sum)
					}
				}

				if v.At(groups[0][hi]) != 1 {
					t.Errorf("heating %v: column %s not set", h, names[groups[0][hi]])
				}
				if v.At(groups[1][ci]) != 1 {
					t.Errorf("cooling %v: column %s not set", c, names[groups[1][ci]])
				}
				if v.At(groups[2][oi]) != 1 {
					t.Errorf("override %v: column %s not set", o, names[groups[2][oi]])
				}
			}
		}
	}
}

func TestSeasonFor(t *testing.T) {
	want := map[int]Season{
		1: Winter, 2: Winter, 12: Winter,
		3: Summer, 4: Summer, 5: Summer,
		6: Fall, 7: Fall, 8: Fall,
		9: Spring, 10: Spring, 11: Spring,
	}

	cols := map[Season]int{Spring: SeasonSpring, Summer: SeasonSummer, Fall: SeasonFall, Winter: SeasonWinter}

	for month := 1; month <= 12; month++ {
		if got := SeasonFor(month); got != want[month] {
			t.Errorf("SeasonFor(%d) = %v, want %v", month, got, want[month])
		}

		in := scenarioInput()
		in.Month, in.Day = month, 1
		v := mustEncode(t, in)
		for s, col := range cols {
			wantFlag := flag(s == want[month])
			if v.At(col) != wantFlag {
				t.Errorf("month %d: %s = %v, want %v", month, names[col], v.At(col), wantFlag)
			}
		}
	}
}

func TestEncode_WeekdayIndicators(t *testing.T) {
	// 2024-01-01 is a Monday; walk three full weeks.
	for day := 1; day <= 21; day++ {
		in := scenarioInput()
		in.Year, in.Month, in.Day = 2024, 1, day
		v := mustEncode(t, in)

		dow := (day - 1) % 7
		if got, _ := Weekday(2024, 1, day); got != dow {
			t.Fatalf("Weekday(2024-01-%02d) = %d, want %d", day, got, dow)
		}

		if got, want := v.At(IsWeekend), flag(dow == 5 || dow == 6); got != want {
			t.Errorf("day %d (dow %d): is_weekend = %v, want %v", day, dow, got, want)
		}
		if got, want := v.At(DayOfWeek0), flag(dow == 0); got != want {
			t.Errorf("day %d (dow %d): day_of_week_0 = %v, want %v", day, dow, got, want)
		}
		if got, want := v.At(DayOfWeek6), flag(dow == 6); got != want {
			t.Errorf("day %d (dow %d): day_of_week_6 = %v, want %v", day, dow, got, want)
		}
	}
}

func TestEncode_Thresholds(t *testing.T) {
	tests := []struct {
		name       string
		temp       int
		income     float64
		wantAbove  float64
		wantLow    float64
		wantIncome float64
	}{
		{"below average", 27, 25000, 0, 1, 0},
		{"exactly average", 28, 25000, 0, 0, 0},
		{"above average", 29, 25000, 1, 0, 0},
		{"income at cutoff", 20, 40000, 0, 1, 0},
		{"income above cutoff", 40, 40000.01, 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := scenarioInput()
			in.OutsideTempCelsius = tt.temp
			in.MonthlyIncome = tt.income
			v := mustEncode(t, in)

			if got := v.At(TempAboveAvg); got != tt.wantAbove {
				t.Errorf("temp_above_avg = %v, want %v", got, tt.wantAbove)
			}
			if got := v.At(LowTempFlag); got != tt.wantLow {
				t.Errorf("low_temp_flag = %v, want %v", got, tt.wantLow)
			}
			if got := v.At(HighIncomeFlag); got != tt.wantIncome {
				t.Errorf("high_income_flag = %v, want %v", got, tt.wantIncome)
			}
		})
	}
}

func TestEncode_Ratios(t *testing.T) {
	tests := []struct {
		occupants int
		sqft      float64
		income    float64
	}{
		{1, 100, 500},
		{3, 1500, 25000},
		{7, 2345.5, 99999},
		{12, 800, 41000},
	}

	for _, tt := range tests {
		in := scenarioInput()
		in.NumOccupants, in.HouseSizeSqft, in.MonthlyIncome = tt.occupants, tt.sqft, tt.income
		v := mustEncode(t, in)

		if got, want := v.At(IncomePerPerson), tt.income/float64(tt.occupants); math.Abs(got-want) > 1e-9 {
			t.Errorf("income_per_person = %v, want %v", got, want)
		}
		if got, want := v.At(SquareFeetPerPerson), tt.sqft/float64(tt.occupants); math.Abs(got-want) > 1e-9 {
			t.Errorf("square_feet_per_person = %v, want %v", got, want)
		}
	}
}

func TestEncode_EnergyStar(t *testing.T) {
	in := scenarioInput()
	in.EnergyStarHome = true
	if got := mustEncode(t, in).At(EnergyStarHome); got != 1 {
		t.Errorf("energy_star_home = %v, want 1", got)
	}
}

func TestEncode_InvalidDate(t *testing.T) {
	tests := []struct {
		year, month, day int
	}{
		{2024, 2, 30},
		{2023, 2, 29},
		{2025, 4, 31},
		{2025, 2, 31},
	}

	for _, tt := range tests {
		in := scenarioInput()
		in.Year, in.Month, in.Day = tt.year, tt.month, tt.day
		_, err := Encode(in)

		var derr *InvalidDateError
		if !errors.As(err, &derr) {
			t.Errorf("Encode(%d-%d-%d) error = %v, want *InvalidDateError", tt.year, tt.month, tt.day, err)
			continue
		}
		if derr.Year != tt.year || derr.Month != tt.month || derr.Day != tt.day {
			t.Errorf("InvalidDateError = %+v", derr)
		}
	}

	in := scenarioInput()
	in.Year, in.Month, in.Day = 2024, 2, 29
	if _, err := Encode(in); err != nil {
		t.Errorf("leap day rejected: %v", err)
	}
}

func TestFromFields(t *testing.T) {
	v := mustEncode(t, scenarioInput())

	rebuilt, err := FromFields(v.Fields())
	if err != nil {
		t.Fatalf("FromFields: %v", err)
	}
	if rebuilt != v {
		t.Error("rebuilt vector differs from original")
	}

	swapped := v.Fields()
	swapped[0], swapped[1] = swapped[1], swapped[0]
	_, err = FromFields(swapped)
	var serr *SchemaMismatchError
	if !errors.As(err, &serr) {
		t.Fatalf("swapped order error = %v, want *SchemaMismatchError", err)
	}
	if serr.Position != 0 {
		t.Errorf("Position = %d, want 0", serr.Position)
	}

	_, err = FromFields(v.Fields()[:Len-1])
	if !errors.As(err, &serr) || serr.Position != -1 {
		t.Errorf("short vector error = %v, want count mismatch", err)
	}
}

func TestVectorJSON(t *testing.T) {
	v := mustEncode(t, scenarioInput())

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Vector
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != v {
		t.Error("decoded vector differs from original")
	}

	err = json.Unmarshal([]byte(`[{"name":"year","value":2025}]`), &decoded)
	var serr *SchemaMismatchError
	if !errors.As(err, &serr) {
		t.Errorf("unmarshal short vector error = %v, want *SchemaMismatchError", err)
	}
}
