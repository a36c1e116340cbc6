package household

// HeatingType is the household's primary heating equipment. The zero value
// is unset and fails validation.
type HeatingType int

const (
	HeatingElectric HeatingType = iota + 1
	HeatingGas
	HeatingNone
)

var heatingNames = map[HeatingType]string{
	HeatingElectric: "Electric",
	HeatingGas:      "Gas",
	HeatingNone:     "None",
}

func ParseHeatingType(s string) (HeatingType, error) {
	for h, name := range heatingNames {
		if name == s {
			return h, nil
		}
	}
	return 0, enumError("heating_type", s, "Electric Gas None")
}

func (h HeatingType) String() string {
	if name, ok := heatingNames[h]; ok {
		return name
	}
	return ""
}

func (h HeatingType) Valid() bool {
	_, ok := heatingNames[h]
	return ok
}

func (h HeatingType) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HeatingType) UnmarshalText(b []byte) error {
	v, err := ParseHeatingType(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// CoolingType is the household's primary cooling equipment. The literal
// "Ac" is what the input form produces for air conditioning.
type CoolingType int

const (
	CoolingAC CoolingType = iota + 1
	CoolingFan
	CoolingNone
)

var coolingNames = map[CoolingType]string{
	CoolingAC:   "Ac",
	CoolingFan:  "Fan",
	CoolingNone: "None",
}

func ParseCoolingType(s string) (CoolingType, error) {
	for c, name := range coolingNames {
		if name == s {
			return c, nil
		}
	}
	return 0, enumError("cooling_type", s, "Ac Fan None")
}

func (c CoolingType) String() string {
	if name, ok := coolingNames[c]; ok {
		return name
	}
	return ""
}

func (c CoolingType) Valid() bool {
	_, ok := coolingNames[c]
	return ok
}

func (c CoolingType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *CoolingType) UnmarshalText(b []byte) error {
	v, err := ParseCoolingType(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ManualOverride records whether the occupants manually override the
// thermostat schedule.
type ManualOverride int

const (
	OverrideYes ManualOverride = iota + 1
	OverrideNo
)

var overrideNames = map[ManualOverride]string{
	OverrideYes: "Y",
	OverrideNo:  "N",
}

func ParseManualOverride(s string) (ManualOverride, error) {
	for o, name := range overrideNames {
		if name == s {
			return o, nil
		}
	}
	return 0, enumError("manual_override", s, "Y N")
}

func (o ManualOverride) String() string {
	if name, ok := overrideNames[o]; ok {
		return name
	}
	return ""
}

func (o ManualOverride) Valid() bool {
	_, ok := overrideNames[o]
	return ok
}

func (o ManualOverride) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *ManualOverride) UnmarshalText(b []byte) error {
	v, err := ParseManualOverride(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func enumError(field, value, allowed string) *ValidationError {
	return &ValidationError{Violations: []Violation{{
		Field: field,
		Rule:  "oneof=" + allowed,
		Value: value,
	}}}
}
