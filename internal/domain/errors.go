package domain

import (
	"errors"
	"fmt"
)

// Error kinds raised by the assessment engine. Callers match them with errors.Is;
// every returned error wraps exactly one of these.
var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrInvalidCurve             = errors.New("invalid power curve")
	ErrCapacityFactorOutOfRange = errors.New("capacity factor out of range")
	ErrEmptyFeatureSet          = errors.New("empty grid feature set")
)

// Stage names the sub-step of a site assessment that failed.
type Stage string

const (
	StageWindProfile    Stage = "wind_profile"
	StageCapacityFactor Stage = "capacity_factor"
	StageGridLookup     Stage = "grid_lookup"
)

// StageError attributes a component error to the assessment stage that raised it.
// The wrapped error is passed through unchanged.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ErrorKind returns a stable machine-readable name for the engine error kind
// wrapped by err, or "internal" when err carries none of them.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrInvalidCurve):
		return "invalid_curve"
	case errors.Is(err, ErrCapacityFactorOutOfRange):
		return "capacity_factor_out_of_range"
	case errors.Is(err, ErrEmptyFeatureSet):
		return "empty_feature_set"
	case errors.Is(err, ErrMalformedQuery):
		return "malformed_query"
	default:
		return "internal"
	}
}

// FailedStage returns the stage recorded on err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

func invalidInput(format string, args ...any) error {
	return wrapf(ErrInvalidInput, format, args...)
}

func wrapf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
