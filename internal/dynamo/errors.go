package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a setup defect detected before any stepping.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrDiverged indicates a time-step bound became non-finite or non-positive.
	ErrDiverged = errors.New("dynamo: simulation diverged (time step bound not finite and positive)")

	// ErrStepOrder indicates the acoustic bound exceeded the advection bound.
	ErrStepOrder = errors.New("dynamo: acoustic step exceeds advection step")

	// ErrNoParticles indicates a phase was discretized into zero particles.
	ErrNoParticles = errors.New("dynamo: phase has no particles")
)

// SimulationError wraps a fatal numerical condition with the outer step it occurred at.
type SimulationError struct {
	Step    int
	Time    float64
	Bound   float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("outer step %d (t=%.6f, bound=%g): %v", e.Step, e.Time, e.Bound, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// ConfigError returns an ErrInvalidConfig wrapped with the offending field.
func ConfigError(field string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...))
}
