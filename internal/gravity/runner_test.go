package gravity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/star/gravsim/internal/body"
)

type recordingPublisher struct {
	mu    sync.Mutex
	steps []int64
	err   error
}

func (p *recordingPublisher) Publish(ctx context.Context, snap *Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, snap.Step)
	return p.err
}

func TestRunnerPublishesSnapshots(t *testing.T) {
	sun, earth, _ := sunEarth()
	sys := serialSystem(sun, earth)
	store := NewSnapshotStore()
	pub := &recordingPublisher{}

	r := NewRunner(sys, store, testLogger(), pub, nil)
	err := r.Run(context.Background(), RunConfig{Steps: 25, SnapshotEvery: 10})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if sys.Steps() != 25 {
		t.Errorf("Steps() = %d, want 25", sys.Steps())
	}

	// Initial, every 10 steps, final.
	want := []int64{0, 10, 20, 25}
	if len(pub.steps) != len(want) {
		t.Fatalf("published steps = %v, want %v", pub.steps, want)
	}
	for i := range want {
		if pub.steps[i] != want[i] {
			t.Errorf("published steps = %v, want %v", pub.steps, want)
			break
		}
	}

	snap := store.Get()
	if snap == nil || snap.Step != 25 {
		t.Fatalf("store snapshot = %+v, want step 25", snap)
	}
	if snap.ElapsedMinutes != 25 {
		t.Errorf("ElapsedMinutes = %v, want 25", snap.ElapsedMinutes)
	}
	if len(snap.Bodies) != 2 {
		t.Errorf("snapshot has %d bodies, want 2", len(snap.Bodies))
	}
}

// TestRunnerPublishErrorNotFatal verifies a failing sink does not stop the run.
func TestRunnerPublishErrorNotFatal(t *testing.T) {
	sun, earth, _ := sunEarth()
	sys := serialSystem(sun, earth)
	pub := &recordingPublisher{err: errors.New("broker down")}

	r := NewRunner(sys, nil, testLogger(), pub)
	if err := r.Run(context.Background(), RunConfig{Steps: 5}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if sys.Steps() != 5 {
		t.Errorf("Steps() = %d, want 5", sys.Steps())
	}
	if len(pub.steps) != 2 {
		t.Errorf("published %d snapshots, want 2 (start and end)", len(pub.steps))
	}
}

func TestRunnerCancellation(t *testing.T) {
	sun, earth, _ := sunEarth()
	sys := serialSystem(sun, earth)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(sys, nil, testLogger())
	err := r.Run(ctx, RunConfig{Steps: 1_000_000})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if sys.Steps() != 0 {
		t.Errorf("Steps() = %d, want 0 after immediate cancel", sys.Steps())
	}
}

func TestRunnerDegenerateStep(t *testing.T) {
	sys := serialSystem(
		body.Body{Name: "A", Mass: 1, Position: r3.Vec{X: 1}},
		body.Body{Name: "B", Mass: 1, Position: r3.Vec{X: -1}, Velocity: r3.Vec{X: 1}},
	)
	store := NewSnapshotStore()

	r := NewRunner(sys, store, testLogger())
	err := r.Run(context.Background(), RunConfig{Steps: 10})
	if !errors.Is(err, body.ErrDegenerateGeometry) {
		t.Fatalf("Run error = %v, want ErrDegenerateGeometry", err)
	}
	// B lands exactly on A after two steps; the third step is rejected.
	if sys.Steps() != 2 {
		t.Errorf("Steps() = %d, want 2", sys.Steps())
	}
}

func TestSnapshotStoreChanged(t *testing.T) {
	store := NewSnapshotStore()
	if store.Get() != nil {
		t.Fatal("new store should be empty")
	}

	changed := store.Changed()
	select {
	case <-changed:
		t.Fatal("Changed closed before Set")
	default:
	}

	store.Set(&Snapshot{Step: 7})

	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("Changed not closed after Set")
	}
	if got := store.Get(); got == nil || got.Step != 7 {
		t.Errorf("Get() = %+v, want step 7", got)
	}

	// A fresh channel waits for the next Set.
	select {
	case <-store.Changed():
		t.Fatal("new Changed channel already closed")
	default:
	}
}
