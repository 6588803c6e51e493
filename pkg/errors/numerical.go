package errors

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// NumericalInstabilityError reports NaN or Inf values produced during a
// numeric computation, for example while aggregating partial Gram matrices.
type NumericalInstabilityError struct {
	Operation string    // operation that produced the values
	Values    []float64 // offending values (truncated)
	Partition int       // partition index, -1 when not partitioned
}

func (e *NumericalInstabilityError) Error() string {
	if e.Partition >= 0 {
		return fmt.Sprintf("tripml: %s: numerical instability detected in partition %d (%d bad values)", e.Operation, e.Partition, len(e.Values))
	}
	return fmt.Sprintf("tripml: %s: numerical instability detected (%d bad values)", e.Operation, len(e.Values))
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NumericalInstabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Int("partition", e.Partition).
		Floats64("values", e.Values).
		Str("type", "NumericalInstabilityError")
}

// NewNumericalInstabilityError creates a new NumericalInstabilityError with a
// stack trace attached.
func NewNumericalInstabilityError(operation string, values []float64, partition int) error {
	err := &NumericalInstabilityError{Operation: operation, Values: values, Partition: partition}
	return WithStack(err)
}

// CheckNumericalStability returns an error if values contain NaN or Inf.
func CheckNumericalStability(operation string, values []float64, partition int) error {
	var bad []float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, v)
			if len(bad) >= 10 {
				// cap the values carried in the error message
				break
			}
		}
	}
	if len(bad) > 0 {
		return NewNumericalInstabilityError(operation, bad, partition)
	}
	return nil
}

// CheckScalar checks a single value for numerical instability.
func CheckScalar(operation string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, -1)
	}
	return nil
}
