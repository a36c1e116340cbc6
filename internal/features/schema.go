package features

import (
	"fmt"
	"slices"
)

// Column positions in the feature vector. The order is the order the
// regression model was trained on and must not change.
const (
	NumOccupants = iota
	HouseSizeSqft
	MonthlyIncome
	OutsideTempCelsius
	Year
	Month
	Day
	HeatingElectric
	HeatingGas
	HeatingNone
	CoolingAC
	CoolingFan
	CoolingNone
	OverrideY
	OverrideN
	IsWeekend
	TempAboveAvg
	IncomePerPerson
	SquareFeetPerPerson
	HighIncomeFlag
	LowTempFlag
	SeasonSpring
	SeasonSummer
	SeasonFall
	SeasonWinter
	DayOfWeek0
	DayOfWeek6
	EnergyStarHome

	Len
)

var names = [Len]string{
	NumOccupants:        "num_occupants",
	HouseSizeSqft:       "house_size_sqft",
	MonthlyIncome:       "monthly_income",
	OutsideTempCelsius:  "outside_temp_celsius",
	Year:                "year",
	Month:               "month",
	Day:                 "day",
	HeatingElectric:     "heating_type_Electric",
	HeatingGas:          "heating_type_Gas",
	HeatingNone:         "heating_type_None",
	CoolingAC:           "cooling_type_AC",
	CoolingFan:          "cooling_type_Fan",
	CoolingNone:         "cooling_type_None",
	OverrideY:           "manual_override_Y",
	OverrideN:           "manual_override_N",
	IsWeekend:           "is_weekend",
	TempAboveAvg:        "temp_above_avg",
	IncomePerPerson:     "income_per_person",
	SquareFeetPerPerson: "square_feet_per_person",
	HighIncomeFlag:      "high_income_flag",
	LowTempFlag:         "low_temp_flag",
	SeasonSpring:        "season_spring",
	SeasonSummer:        "season_summer",
	SeasonFall:          "season_fall",
	SeasonWinter:        "season_winter",
	DayOfWeek0:          "day_of_week_0",
	DayOfWeek6:          "day_of_week_6",
	EnergyStarHome:      "energy_star_home",
}

// Names returns the feature names in model order.
func Names() []string {
	return slices.Clone(names[:])
}

// Index returns the column of the named feature.
func Index(name string) (int, bool) {
	i := slices.Index(names[:], name)
	return i, i >= 0
}

// CheckNames verifies that got lists exactly the encoder's features in the
// encoder's order.
func CheckNames(got []string) error {
	if len(got) != Len {
		return &SchemaMismatchError{Got: slices.Clone(got), Position: -1}
	}
	for i, name := range got {
		if name != names[i] {
			return &SchemaMismatchError{Got: slices.Clone(got), Position: i}
		}
	}
	return nil
}

// SchemaMismatchError reports a feature list whose count, names or order
// differ from the encoder's. Position is the first differing column, or -1
// when the counts differ.
type SchemaMismatchError struct {
	Got      []string
	Position int
}

func (e *SchemaMismatchError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("feature schema mismatch: got %d features, want %d", len(e.Got), Len)
	}
	return fmt.Sprintf("feature schema mismatch at column %d: got %q, want %q", e.Position, e.Got[e.Position], names[e.Position])
}
