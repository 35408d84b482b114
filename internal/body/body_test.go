package body

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestInfo(t *testing.T) {
	b := Body{
		Name:     "Earth",
		Mass:     5.9736,
		Position: r3.Vec{X: 1, Y: 0, Z: 0},
		Velocity: r3.Vec{X: 0, Y: 1.5e-5, Z: 0},
	}

	want := "Earth At (1,0,0), 1 with velocity (0,1.5e-05,0), 2243.97"
	if got := b.Info(); got != want {
		t.Errorf("Info() = %q, want %q", got, want)
	}
}

// TestSpeedScaling pins the literal AU/minute * km-per-AU scaling.
func TestSpeedScaling(t *testing.T) {
	b := Body{Velocity: r3.Vec{X: 3e-6, Y: 4e-6}}
	want := 5e-6 * KmPerAU
	if got := b.Speed(); math.Abs(got-want) > 1e-9 {
		t.Errorf("Speed() = %v, want %v", got, want)
	}
}

func TestDistanceFrom(t *testing.T) {
	a := Body{Position: r3.Vec{X: 1, Y: 2, Z: 3}}
	b := Body{Position: r3.Vec{X: 4, Y: 6, Z: 3}}
	if got := a.DistanceFrom(b); got != 5 {
		t.Errorf("DistanceFrom() = %v, want 5", got)
	}
	if got := a.DistanceFrom(a); got != 0 {
		t.Errorf("DistanceFrom(self) = %v, want 0", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mass    float64
		wantErr bool
	}{
		{"positive", 1.0, false},
		{"tiny", 1e-12, false},
		{"zero", 0, true},
		{"negative", -3, true},
		{"NaN", math.NaN(), true},
		{"Inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Body{Name: "x", Mass: tt.mass}.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidMass) {
				t.Errorf("error %v does not match ErrInvalidMass", err)
			}
			var me *InvalidMassError
			if !errors.As(err, &me) || me.Name != "x" {
				t.Errorf("errors.As failed or wrong name: %v", err)
			}
		})
	}
}

func TestFinite(t *testing.T) {
	if !(Body{}).Finite() {
		t.Error("zero body should be finite")
	}
	if (Body{Position: r3.Vec{X: math.NaN()}}).Finite() {
		t.Error("NaN position should not be finite")
	}
	if (Body{Velocity: r3.Vec{Z: math.Inf(-1)}}).Finite() {
		t.Error("Inf velocity should not be finite")
	}
}

func TestDegenerateGeometryError(t *testing.T) {
	err := error(&DegenerateGeometryError{Name: "A", Other: "B", Reason: "zero distance"})
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Error("expected errors.Is to match ErrDegenerateGeometry")
	}
	if errors.Is(err, ErrInvalidMass) {
		t.Error("unexpected match with ErrInvalidMass")
	}
	if got, want := err.Error(), `bodies "A" and "B": zero distance`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
