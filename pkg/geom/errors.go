package geom

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput is wrapped by every precondition violation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNumericAnomaly marks a result that was computed but contains NaN or
	// infinite values because the input coordinates did. It is never returned
	// as the error of a computation; see Anomaly.
	ErrNumericAnomaly = errors.New("numeric anomaly")
)

// InputError describes which buffer violated which precondition.
type InputError struct {
	Buffer     string // "vertices", "indices", "voxel size", ...
	Constraint string // human-readable constraint that was violated
	Index      int    // offending element, or -1 when not element-specific
}

// NewInputError returns an InputError that is not tied to a single element.
func NewInputError(buffer, constraint string) *InputError {
	return &InputError{Buffer: buffer, Constraint: constraint, Index: -1}
}

func (e *InputError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid input: %s[%d]: %s", e.Buffer, e.Index, e.Constraint)
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Buffer, e.Constraint)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// Anomaly returns an error wrapping ErrNumericAnomaly naming the first of
// the given values that is NaN or infinite, or nil if all are finite.
func Anomaly(what string, vals ...float64) error {
	for _, v := range vals {
		switch {
		case math.IsNaN(v):
			return fmt.Errorf("%s is NaN: %w", what, ErrNumericAnomaly)
		case math.IsInf(v, 0):
			return fmt.Errorf("%s is infinite: %w", what, ErrNumericAnomaly)
		}
	}
	return nil
}
