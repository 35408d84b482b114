package body

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMass matches any *InvalidMassError.
	ErrInvalidMass = errors.New("invalid mass")

	// ErrDegenerateGeometry matches any *DegenerateGeometryError.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

// InvalidMassError reports a body whose mass is not strictly positive.
type InvalidMassError struct {
	Name string
	Mass float64
}

func (e *InvalidMassError) Error() string {
	return fmt.Sprintf("body %q: invalid mass %g (must be > 0)", e.Name, e.Mass)
}

func (e *InvalidMassError) Is(target error) bool {
	return target == ErrInvalidMass
}

// DegenerateGeometryError reports a zero or non-finite distance, either while
// resolving a body from its observations or between two bodies during a step.
// Other is empty when only one body is involved.
type DegenerateGeometryError struct {
	Name   string
	Other  string
	Reason string
}

func (e *DegenerateGeometryError) Error() string {
	if e.Other != "" {
		return fmt.Sprintf("bodies %q and %q: %s", e.Name, e.Other, e.Reason)
	}
	return fmt.Sprintf("body %q: %s", e.Name, e.Reason)
}

func (e *DegenerateGeometryError) Is(target error) bool {
	return target == ErrDegenerateGeometry
}
