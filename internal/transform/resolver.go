// Package transform converts ephemeris observations into Cartesian state.
//
// An observation locates a body by right ascension, declination and distance
// (delta) from a reference point. Right-triangle decomposition recovers the
// Cartesian point, but squaring loses the sign of every leg, so each sign is
// recovered separately from the sine or cosine of the angle that produced it.
//
// Two observations one hour apart give the velocity. HORIZONS data is not
// precise enough to difference consecutive minutes, hence the hour baseline.
package transform

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/star/gravsim/internal/body"
)

// Observation is one sighting of a body.
type Observation struct {
	Ascension   float64 // radians, [0, 2pi)
	Declination float64 // radians, (-pi/2, pi/2]
	Delta       float64 // AU
}

// Point converts an observation to a Cartesian point in AU.
//
// The order matters: z from declination, then the equatorial projection A,
// then y and x from ascension. Later legs are built from earlier magnitudes.
func Point(obs Observation) r3.Vec {
	delta := obs.Delta

	z := math.Sqrt(delta*delta - math.Pow(delta*math.Cos(obs.Declination), 2))
	if math.Sin(obs.Declination) < 0 {
		z = -z
	}

	// A is the base of the <A, z, delta> triangle and the hypotenuse of <x, y, A>.
	a := math.Sqrt(delta*delta - z*z)

	y := math.Sqrt(a*a - math.Pow(a*math.Cos(obs.Ascension), 2))
	if math.Sin(obs.Ascension) < 0 {
		y = -y
	}

	x := math.Sqrt(a*a - y*y)
	if math.Cos(obs.Ascension) < 0 {
		x = -x
	}

	return r3.Vec{X: x, Y: y, Z: z}
}

// Resolve builds a body from two observations taken one hour apart.
// Position comes from the first observation; velocity is the displacement
// between the two divided by the interval, in AU/minute.
func Resolve(name string, mass float64, first, second Observation) (body.Body, error) {
	b := body.Body{Name: name, Mass: mass}
	if err := b.Validate(); err != nil {
		return body.Body{}, err
	}
	for _, obs := range [2]Observation{first, second} {
		if !(obs.Delta > 0) || math.IsInf(obs.Delta, 0) {
			return body.Body{}, &body.DegenerateGeometryError{Name: name, Reason: "observation distance must be finite and > 0"}
		}
	}

	p1 := Point(first)
	p2 := Point(second)

	b.Position = p1
	b.Velocity = r3.Vec{
		X: (p2.X - p1.X) / body.ObservationInterval,
		Y: (p2.Y - p1.Y) / body.ObservationInterval,
		Z: (p2.Z - p1.Z) / body.ObservationInterval,
	}

	if !b.Finite() {
		return body.Body{}, &body.DegenerateGeometryError{Name: name, Reason: "resolved state is not finite"}
	}
	return b, nil
}

// ObservationFromPoint is the inverse of Point: it returns the ascension,
// declination and distance that locate p.
func ObservationFromPoint(p r3.Vec) Observation {
	delta := math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
	if delta == 0 {
		return Observation{}
	}
	ra := math.Atan2(p.Y, p.X)
	if ra < 0 {
		ra += 2 * math.Pi
	}
	return Observation{
		Ascension:   ra,
		Declination: math.Asin(p.Z / delta),
		Delta:       delta,
	}
}
