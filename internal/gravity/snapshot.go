package gravity

import (
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/star/gravsim/internal/body"
)

// Snapshot is an immutable copy of a system at one step.
type Snapshot struct {
	Step           int64
	ElapsedMinutes float64
	TakenAt        time.Time
	Energy         float64
	Momentum       r3.Vec
	Bodies         []body.Body
}

// Snapshot copies the current state of the system.
func (s *System) Snapshot() *Snapshot {
	bodies := s.Bodies()
	return &Snapshot{
		Step:           s.steps,
		ElapsedMinutes: s.ElapsedMinutes(),
		TakenAt:        time.Now(),
		Energy:         energy(bodies),
		Momentum:       momentum(bodies),
		Bodies:         bodies,
	}
}

// Report formats the snapshot the same way System.Report does.
func (snap *Snapshot) Report() string {
	return report(snap.Bodies)
}

// SnapshotStore provides thread-safe access to the latest snapshot.
type SnapshotStore struct {
	latest atomic.Pointer[Snapshot]
	notify atomic.Pointer[chan struct{}]
}

// NewSnapshotStore creates an empty store.
func NewSnapshotStore() *SnapshotStore {
	s := &SnapshotStore{}
	ch := make(chan struct{})
	s.notify.Store(&ch)
	return s
}

// Get returns the latest snapshot, or nil if none has been stored.
func (s *SnapshotStore) Get() *Snapshot {
	return s.latest.Load()
}

// Set atomically replaces the latest snapshot and wakes every Changed waiter.
func (s *SnapshotStore) Set(snap *Snapshot) {
	s.latest.Store(snap)
	next := make(chan struct{})
	prev := s.notify.Swap(&next)
	close(*prev)
}

// Changed returns a channel that is closed on the next Set.
func (s *SnapshotStore) Changed() <-chan struct{} {
	return *s.notify.Load()
}
