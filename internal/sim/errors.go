package sim

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates parameters that cannot produce a run: fewer
// than two samples, an empty time span, or a non-finite scalar. It is raised
// before any simulation step executes.
var ErrInvalidConfig = errors.New("sim: invalid configuration")

// StepError wraps an error with the step at which it occurred.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
