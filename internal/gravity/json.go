package gravity

import (
	"encoding/json"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

type snapshotJSON struct {
	Step           int64      `json:"step"`
	ElapsedMinutes float64    `json:"elapsed_minutes"`
	TakenAt        string     `json:"taken_at"`
	Energy         float64    `json:"energy"`
	Momentum       [3]float64 `json:"momentum"`
	Bodies         []bodyJSON `json:"bodies"`
}

type bodyJSON struct {
	Name       string     `json:"name"`
	Mass       float64    `json:"mass"`
	Position   [3]float64 `json:"position"`
	Velocity   [3]float64 `json:"velocity"`
	DistanceAU float64    `json:"distance_au"`
	Speed      float64    `json:"speed"`
}

func triple(v r3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// MarshalJSON encodes the snapshot for the HTTP API and pub/sub sinks.
// Non-finite values cannot be encoded; AdvanceStep never produces them.
func (snap *Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		Step:           snap.Step,
		ElapsedMinutes: snap.ElapsedMinutes,
		TakenAt:        snap.TakenAt.UTC().Format(time.RFC3339Nano),
		Energy:         snap.Energy,
		Momentum:       triple(snap.Momentum),
		Bodies:         make([]bodyJSON, len(snap.Bodies)),
	}
	for i, b := range snap.Bodies {
		out.Bodies[i] = bodyJSON{
			Name:       b.Name,
			Mass:       b.Mass,
			Position:   triple(b.Position),
			Velocity:   triple(b.Velocity),
			DistanceAU: b.Distance(),
			Speed:      b.Speed(),
		}
	}
	return json.Marshal(out)
}
