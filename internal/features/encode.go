// Package features turns a household's raw answers into the fixed-order
// numeric vector the energy model was trained on.
package features

import (
	"fmt"
	"time"

	"github.com/lox/homeenergy/internal/household"
)

const (
	avgTempCelsius   = 28
	highIncomeCutoff = 40000
)

// Season is the month bucket used as a model feature. The labels follow the
// training data rather than the calendar: June to August is "fall" and
// March to May is "summer".
type Season int

const (
	Spring Season = iota + 1
	Summer
	Fall
	Winter
)

func (s Season) String() string {
	switch s {
	case Spring:
		return "spring"
	case Summer:
		return "summer"
	case Fall:
		return "fall"
	case Winter:
		return "winter"
	}
	return ""
}

// SeasonFor maps a month (1-12) to its bucket. Months outside 1-12 fall
// into the residual spring bucket.
func SeasonFor(month int) Season {
	switch month {
	case 12, 1, 2:
		return Winter
	case 3, 4, 5:
		return Summer
	case 6, 7, 8:
		return Fall
	default:
		return Spring
	}
}

// InvalidDateError is returned when year, month and day do not name a real
// calendar date.
type InvalidDateError struct {
	Year, Month, Day int
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date: %04d-%02d-%02d", e.Year, e.Month, e.Day)
}

// Weekday returns the weekday index of the date with Monday as 0 and Sunday
// as 6.
func Weekday(year, month, day int) (int, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return 0, &InvalidDateError{Year: year, Month: month, Day: day}
	}
	return (int(t.Weekday()) + 6) % 7, nil
}

// Encode builds the feature vector for in. The input is expected to have
// passed Validate; the only failure is an impossible calendar date.
func Encode(in household.Input) (Vector, error) {
	dow, err := Weekday(in.Year, in.Month, in.Day)
	if err != nil {
		return Vector{}, err
	}
	season := SeasonFor(in.Month)
	occupants := float64(in.NumOccupants)

	var v [Len]float64
	v[NumOccupants] = occupants
	v[HouseSizeSqft] = in.HouseSizeSqft
	v[MonthlyIncome] = in.MonthlyIncome
	v[OutsideTempCelsius] = float64(in.OutsideTempCelsius)
	v[Year] = float64(in.Year)
	v[Month] = float64(in.Month)
	v[Day] = float64(in.Day)

	v[HeatingElectric] = flag(in.HeatingType == household.HeatingElectric)
	v[HeatingGas] = flag(in.HeatingType == household.HeatingGas)
	v[HeatingNone] = flag(in.HeatingType == household.HeatingNone)

	v[CoolingAC] = flag(in.CoolingType == household.CoolingAC)
	v[CoolingFan] = flag(in.CoolingType == household.CoolingFan)
	v[CoolingNone] = flag(in.CoolingType == household.CoolingNone)

	v[OverrideY] = flag(in.ManualOverride == household.OverrideYes)
	v[OverrideN] = flag(in.ManualOverride == household.OverrideNo)

	v[IsWeekend] = flag(dow >= 5)
	v[TempAboveAvg] = flag(in.OutsideTempCelsius > avgTempCelsius)
	v[IncomePerPerson] = in.MonthlyIncome / occupants
	v[SquareFeetPerPerson] = in.HouseSizeSqft / occupants
	v[HighIncomeFlag] = flag(in.MonthlyIncome > highIncomeCutoff)
	v[LowTempFlag] = flag(in.OutsideTempCelsius < avgTempCelsius)

	v[SeasonSpring] = flag(season == Spring)
	v[SeasonSummer] = flag(season == Summer)
	v[SeasonFall] = flag(season == Fall)
	v[SeasonWinter] = flag(season == Winter)

	// Only Monday and Sunday have indicator columns; Tuesday to Saturday
	// share the all-zero encoding.
	v[DayOfWeek0] = flag(dow == 0)
	v[DayOfWeek6] = flag(dow == 6)

	v[EnergyStarHome] = flag(in.EnergyStarHome)

	return Vector{values: v}, nil
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
