package household

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Input is one household's raw answers, as collected from the user before
// any feature engineering. Values are never coerced: anything outside the
// accepted ranges is rejected by Validate.
type Input struct {
	NumOccupants       int            `json:"num_occupants" validate:"gte=1"`
	HouseSizeSqft      float64        `json:"house_size_sqft" validate:"gte=100"`
	MonthlyIncome      float64        `json:"monthly_income" validate:"gte=500"`
	OutsideTempCelsius int            `json:"outside_temp_celsius" validate:"gte=10,lte=45"`
	Year               int            `json:"year" validate:"gte=2000,lte=2035"`
	Month              int            `json:"month" validate:"gte=1,lte=12"`
	Day                int            `json:"day" validate:"gte=1,lte=31"`
	HeatingType        HeatingType    `json:"heating_type" validate:"enum"`
	CoolingType        CoolingType    `json:"cooling_type" validate:"enum"`
	ManualOverride     ManualOverride `json:"manual_override" validate:"enum"`
	EnergyStarHome     bool           `json:"energy_star_home"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("enum", validateEnum)
}

func validateEnum(fl validator.FieldLevel) bool {
	v, ok := fl.Field().Interface().(interface{ Valid() bool })
	return ok && v.Valid()
}

// Validate checks the range and enum constraints of every field. Calendar
// validity of year/month/day is not checked here; the feature encoder
// rejects impossible dates.
func (in Input) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate input: %w", err)
	}

	verr := &ValidationError{}
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		verr.Violations = append(verr.Violations, Violation{
			Field: fe.Field(),
			Rule:  rule,
			Value: fmt.Sprint(fe.Value()),
		})
	}
	return verr
}

type Violation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Value string `json:"value"`
}

// ValidationError reports every field of an Input that broke a range or
// enum constraint.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s=%q violates %s", v.Field, v.Value, v.Rule))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}
