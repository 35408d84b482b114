package transform

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/star/gravsim/internal/body"
)

func closeVec(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol && math.Abs(a.Z-b.Z) <= tol
}

func TestAscensionToRadians(t *testing.T) {
	tests := []struct {
		h, m, s float64
		want    float64
	}{
		{0, 0, 0, 0},
		{6, 0, 0, math.Pi / 2},
		{12, 0, 0, math.Pi},
		{18, 0, 0, 3 * math.Pi / 2},
		{1, 30, 0, 1.5 / 24 * 2 * math.Pi},
		{0, 0, 3600, 1.0 / 24 * 2 * math.Pi},
	}
	for _, tt := range tests {
		got := AscensionToRadians(tt.h, tt.m, tt.s)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("AscensionToRadians(%v, %v, %v) = %v, want %v", tt.h, tt.m, tt.s, got, tt.want)
		}
	}
}

func TestDeclinationToRadians(t *testing.T) {
	deg := math.Pi / 180
	tests := []struct {
		name    string
		d, m, s float64
		want    float64
	}{
		{"zero", 0, 0, 0, 0},
		{"north", 45, 30, 0, 45.5 * deg},
		{"south", -45, 30, 0, -45.5 * deg},
		{"south seconds", -10, 0, 36, -10.01 * deg},
		{"negative zero", math.Copysign(0, -1), 30, 0, -0.5 * deg},
		{"positive zero", 0, 30, 0, 0.5 * deg},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeclinationToRadians(tt.d, tt.m, tt.s)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("DeclinationToRadians(%v, %v, %v) = %v, want %v", tt.d, tt.m, tt.s, got, tt.want)
			}
		})
	}
}

// TestPointOctants checks that sign recovery lands each point in the right
// octant.
func TestPointOctants(t *testing.T) {
	for _, sx := range []float64{1, -1} {
		for _, sy := range []float64{1, -1} {
			for _, sz := range []float64{1, -1} {
				want := r3.Vec{X: sx * 0.6, Y: sy * 0.7, Z: sz * 0.35}
				got := Point(ObservationFromPoint(want))
				if !closeVec(got, want, 1e-12) {
					t.Errorf("Point(ObservationFromPoint(%v)) = %v", want, got)
				}
			}
		}
	}
}

func TestPointAxes(t *testing.T) {
	tests := []struct {
		name string
		obs  Observation
		want r3.Vec
	}{
		{"x axis", Observation{Ascension: 0, Declination: 0, Delta: 2}, r3.Vec{X: 2}},
		{"y axis", Observation{Ascension: math.Pi / 2, Declination: 0, Delta: 2}, r3.Vec{Y: 2}},
		{"negative x", Observation{Ascension: math.Pi, Declination: 0, Delta: 2}, r3.Vec{X: -2}},
		{"north pole", Observation{Ascension: 0, Declination: math.Pi / 2, Delta: 3}, r3.Vec{Z: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Point(tt.obs)
			if !closeVec(got, tt.want, 1e-7) {
				t.Errorf("Point(%+v) = %v, want %v", tt.obs, got, tt.want)
			}
		})
	}
}

// TestResolveRoundTrip generates observations from a known Cartesian state
// and checks Resolve recovers it.
func TestResolveRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		pos  r3.Vec
		vel  r3.Vec
	}{
		{"inner planet", r3.Vec{X: 0.3, Y: -0.8, Z: 0.2}, r3.Vec{X: 1e-5, Y: 2e-6, Z: -3e-6}},
		{"outer planet", r3.Vec{X: -4.1, Y: 3.3, Z: -0.9}, r3.Vec{X: -2e-6, Y: -3.5e-6, Z: 4e-7}},
		{"moon-like", r3.Vec{X: 0.0021, Y: 0.0017, Z: -0.0009}, r3.Vec{X: -4e-7, Y: 5e-7, Z: 1e-7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			later := r3.Add(tt.pos, r3.Scale(body.ObservationInterval, tt.vel))
			b, err := Resolve("probe", 1.0, ObservationFromPoint(tt.pos), ObservationFromPoint(later))
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if !closeVec(b.Position, tt.pos, 1e-12) {
				t.Errorf("position = %v, want %v", b.Position, tt.pos)
			}
			if !closeVec(b.Velocity, tt.vel, 1e-13) {
				t.Errorf("velocity = %v, want %v", b.Velocity, tt.vel)
			}
			if b.Name != "probe" || b.Mass != 1.0 {
				t.Errorf("name/mass not copied: %q %v", b.Name, b.Mass)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	good := Observation{Ascension: 1, Declination: 0.2, Delta: 1}
	tests := []struct {
		name   string
		mass   float64
		first  Observation
		second Observation
		target error
	}{
		{"zero mass", 0, good, good, body.ErrInvalidMass},
		{"negative mass", -1, good, good, body.ErrInvalidMass},
		{"zero delta", 1, Observation{Ascension: 1, Declination: 0.2}, good, body.ErrDegenerateGeometry},
		{"negative delta", 1, good, Observation{Ascension: 1, Delta: -2}, body.ErrDegenerateGeometry},
		{"NaN angle", 1, Observation{Ascension: math.NaN(), Delta: 1}, good, body.ErrDegenerateGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve("bad", tt.mass, tt.first, tt.second)
			if !errors.Is(err, tt.target) {
				t.Errorf("Resolve error = %v, want %v", err, tt.target)
			}
		})
	}
}
