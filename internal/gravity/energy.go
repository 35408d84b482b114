package gravity

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/star/gravsim/internal/body"
)

// Energy returns the total kinetic plus potential energy in model units
// (10^24 kg * AU^2 / minute^2).
func (s *System) Energy() float64 {
	return energy(s.bodies)
}

// Momentum returns the total linear momentum in 10^24 kg * AU / minute.
func (s *System) Momentum() r3.Vec {
	return momentum(s.bodies)
}

func energy(bodies []body.Body) float64 {
	var kinetic, potential float64
	for i, bi := range bodies {
		kinetic += 0.5 * bi.Mass * r3.Norm2(bi.Velocity)
		for j := i + 1; j < len(bodies); j++ {
			r := bi.DistanceFrom(bodies[j])
			potential -= body.Gravity * bi.Mass * bodies[j].Mass / r
		}
	}
	return kinetic + potential
}

func momentum(bodies []body.Body) r3.Vec {
	var p r3.Vec
	for _, b := range bodies {
		p = r3.Add(p, r3.Scale(b.Mass, b.Velocity))
	}
	return p
}

// RelativeDrift returns |now-initial| / |initial|, or |now| when initial is 0.
func RelativeDrift(initial, now float64) float64 {
	if initial == 0 {
		return math.Abs(now)
	}
	return math.Abs(now-initial) / math.Abs(initial)
}
