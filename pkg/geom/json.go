package geom

import (
	"encoding/json"
	"math"
	"strconv"
)

// Float is a float64 whose JSON form is a number when finite and one of
// the strings "NaN", "+Inf" or "-Inf" otherwise. encoding/json rejects
// non-finite numbers, and results carrying them are still reported.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(v)
}

func (f *Float) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = Float(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

type jsonVector struct {
	X Float `json:"x"`
	Y Float `json:"y"`
	Z Float `json:"z"`
}

func (v Vector3) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonVector{Float(v.X), Float(v.Y), Float(v.Z)})
}

func (v *Vector3) UnmarshalJSON(data []byte) error {
	var jv jsonVector
	if err := json.Unmarshal(data, &jv); err != nil {
		return err
	}
	*v = Vector3{float64(jv.X), float64(jv.Y), float64(jv.Z)}
	return nil
}
