package gravity

import (
	"context"
	"time"
)

// Config controls how the compute phase of a step is scheduled.
type Config struct {
	Workers           int // Compute-phase goroutines (default: runtime.NumCPU()); <= 1 is serial.
	ParallelThreshold int // Minimum body count before work is split (default: 64).
}

// RunConfig controls a Runner.Run invocation.
type RunConfig struct {
	Steps         int64         // Number of AdvanceStep calls (one per simulated minute).
	SnapshotEvery int64         // Steps between published snapshots (default: 1440); <= 0 disables intermediate snapshots.
	ProgressEvery time.Duration // Minimum interval between progress logs (default: 5s).
}

// Publisher receives snapshots as the simulation runs.
type Publisher interface {
	Publish(ctx context.Context, snap *Snapshot) error
}
