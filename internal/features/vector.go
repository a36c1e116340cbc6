package features

import (
	"encoding/json"
	"fmt"
)

// Vector is an encoded feature vector. It is a value type: copies are
// independent and nothing mutates a Vector after Encode returns it.
type Vector struct {
	values [Len]float64
}

// Field is one named column of a Vector.
type Field struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// At returns the value in column i, one of the column constants.
func (v Vector) At(i int) float64 {
	return v.values[i]
}

// Get returns the value of the named feature.
func (v Vector) Get(name string) (float64, bool) {
	i, ok := Index(name)
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

// Values returns the values in model order.
func (v Vector) Values() []float64 {
	out := make([]float64, Len)
	copy(out, v.values[:])
	return out
}

// Fields returns name/value pairs in model order.
func (v Vector) Fields() []Field {
	out := make([]Field, Len)
	for i := range v.values {
		out[i] = Field{Name: names[i], Value: v.values[i]}
	}
	return out
}

func (v Vector) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Fields())
}

func (v *Vector) UnmarshalJSON(b []byte) error {
	var fields []Field
	if err := json.Unmarshal(b, &fields); err != nil {
		return fmt.Errorf("decode feature vector: %w", err)
	}
	out, err := FromFields(fields)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// FromFields rebuilds a Vector from an externally supplied, ordered list
// of fields. The names must match the encoder schema exactly.
func FromFields(fields []Field) (Vector, error) {
	got := make([]string, len(fields))
	for i, f := range fields {
		got[i] = f.Name
	}
	if err := CheckNames(got); err != nil {
		return Vector{}, err
	}

	var v Vector
	for i, f := range fields {
		v.values[i] = f.Value
	}
	return v, nil
}
