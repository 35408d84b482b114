package gravity

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/star/gravsim/internal/body"
)

// defaultParallelThreshold is the body count below which goroutine fan-out
// costs more than the O(n^2) loop it splits.
const defaultParallelThreshold = 64

// System owns a fixed population of bodies and advances them in lock-step,
// one simulated minute per AdvanceStep. Not safe for concurrent use; readers
// on other goroutines should go through a SnapshotStore.
type System struct {
	bodies []body.Body
	accel  []r3.Vec // compute-phase buffer, one entry per body
	steps  int64

	pool   *WorkerPool
	config Config
	logger *slog.Logger
}

// NewSystem creates an empty system.
func NewSystem(config Config, logger *slog.Logger) *System {
	if config.ParallelThreshold <= 0 {
		config.ParallelThreshold = defaultParallelThreshold
	}
	return &System{
		pool:   NewWorkerPool(config.Workers, logger),
		config: config,
		logger: logger,
	}
}

// AddBody appends b. Bodies are reported in insertion order.
func (s *System) AddBody(b body.Body) {
	s.bodies = append(s.bodies, b)
	s.accel = append(s.accel, r3.Vec{})
}

// Len returns the number of bodies.
func (s *System) Len() int {
	return len(s.bodies)
}

// Body returns a copy of the i-th body.
func (s *System) Body(i int) body.Body {
	return s.bodies[i]
}

// Bodies returns a copy of all bodies in insertion order.
func (s *System) Bodies() []body.Body {
	out := make([]body.Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// Steps returns the number of completed steps. Zero means the system is
// still in its initial configuration.
func (s *System) Steps() int64 {
	return s.steps
}

// ElapsedMinutes returns the simulated time since the initial configuration.
func (s *System) ElapsedMinutes() float64 {
	return float64(s.steps)
}

// AdvanceStep moves the whole system one minute into the future.
//
// All accelerations are computed from the pre-step positions before any body
// is touched. Each body then moves by its pre-step velocity, and only after
// that is its velocity updated with the new acceleration.
//
// A zero or non-finite separation between two bodies aborts the step with a
// *body.DegenerateGeometryError; in that case no body is modified.
func (s *System) AdvanceStep() error {
	n := len(s.bodies)
	if n == 0 {
		s.steps++
		return nil
	}

	var err error
	if s.pool.workers > 1 && n >= s.config.ParallelThreshold {
		err = s.pool.ComputeAccelerations(s.bodies, s.accel)
	} else {
		err = computeRange(s.bodies, s.accel, 0, n)
	}
	if err != nil {
		return err
	}

	for i := range s.bodies {
		b := &s.bodies[i]
		b.Position = r3.Add(b.Position, b.Velocity)
		b.Velocity = r3.Add(b.Velocity, s.accel[i])
	}
	s.steps++
	return nil
}

// computeRange fills accel[lo:hi] with the acceleration on each body from
// every other body. It only reads bodies.
func computeRange(bodies []body.Body, accel []r3.Vec, lo, hi int) error {
	for i := lo; i < hi; i++ {
		bi := bodies[i]
		var a r3.Vec
		for j := range bodies {
			if i == j {
				continue
			}
			bj := bodies[j]
			dx := bi.Position.X - bj.Position.X
			dy := bi.Position.Y - bj.Position.Y
			dz := bi.Position.Z - bj.Position.Z

			distance := math.Sqrt(dx*dx + dy*dy + dz*dz)
			if distance == 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
				return &body.DegenerateGeometryError{
					Name:   bi.Name,
					Other:  bj.Name,
					Reason: fmt.Sprintf("separation %g AU", distance),
				}
			}
			d3 := math.Pow(distance, 3)

			a.X += -(body.Gravity * (bj.Mass * dx)) / d3
			a.Y += -(body.Gravity * (bj.Mass * dy)) / d3
			a.Z += -(body.Gravity * (bj.Mass * dz)) / d3
		}
		if math.IsNaN(a.X+a.Y+a.Z) || math.IsInf(a.X+a.Y+a.Z, 0) {
			return &body.DegenerateGeometryError{Name: bi.Name, Reason: "acceleration is not finite"}
		}
		accel[i] = a
	}
	return nil
}

// Report returns one line per body, in insertion order:
//
//	Body 1: Sun At (x,y,z), r with velocity (dx,dy,dz), speed
func (s *System) Report() string {
	return report(s.bodies)
}

func report(bodies []body.Body) string {
	var sb strings.Builder
	for i, b := range bodies {
		fmt.Fprintf(&sb, "Body %d: %s\n", i+1, b.Info())
	}
	return sb.String()
}
