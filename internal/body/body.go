// Package body defines the point mass simulated by the gravitational system
// and the unit system shared by every other package.
//
// Units: mass in 10^24 kg, position in AU, velocity in AU per minute.
package body

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// KmPerAU is the value used by NASA's HORIZONS system.
	KmPerAU = 149597870.691

	// Gravity is Newton's constant in AU^3 / (10^24 kg * minute^2).
	Gravity = 7.17633288458e-17

	// MinutesPerDay is the number of simulation steps in one simulated day.
	MinutesPerDay = 1440

	// ObservationInterval is the spacing, in minutes, of the two ephemeris
	// observations a body is resolved from.
	ObservationInterval = 60
)

// Body is a point mass. Mass never changes after construction; Position and
// Velocity are advanced by the gravitational system once per simulated minute.
type Body struct {
	Name     string
	Mass     float64
	Position r3.Vec // AU
	Velocity r3.Vec // AU/minute
}

// Distance returns the distance from the origin in AU.
func (b Body) Distance() float64 {
	return magnitude(b.Position)
}

// Speed returns the velocity magnitude scaled by KmPerAU.
//
// The velocity is in AU/minute, so the result is km/minute even though the
// report has always labelled it km/h. Kept as-is so reports stay comparable
// with existing outputs.
func (b Body) Speed() float64 {
	return magnitude(b.Velocity) * KmPerAU
}

// DistanceFrom returns the Euclidean distance to other in AU.
func (b Body) DistanceFrom(other Body) float64 {
	return magnitude(r3.Sub(b.Position, other.Position))
}

// Finite reports whether every position and velocity component is finite.
func (b Body) Finite() bool {
	return finite(b.Position) && finite(b.Velocity)
}

// Info formats the body as "<name> At (x,y,z), r with velocity (dx,dy,dz), s".
// Numbers use six significant digits.
func (b Body) Info() string {
	p, v := b.Position, b.Velocity
	return fmt.Sprintf("%s At (%.6g,%.6g,%.6g), %.6g with velocity (%.6g,%.6g,%.6g), %.6g",
		b.Name, p.X, p.Y, p.Z, b.Distance(), v.X, v.Y, v.Z, b.Speed())
}

// Validate checks the construction precondition mass > 0.
func (b Body) Validate() error {
	if !(b.Mass > 0) || math.IsInf(b.Mass, 0) {
		return &InvalidMassError{Name: b.Name, Mass: b.Mass}
	}
	return nil
}

func magnitude(v r3.Vec) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
