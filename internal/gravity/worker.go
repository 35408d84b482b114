package gravity

import (
	"log/slog"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/star/gravsim/internal/body"
)

// WorkerPool splits the compute phase of a step across a fixed number of
// goroutines. Each worker owns a contiguous range of bodies and writes only
// its own slots of the acceleration buffer, so no locking is needed; the
// apply phase starts only after every worker has returned.
type WorkerPool struct {
	workers int
	logger  *slog.Logger
}

// NewWorkerPool creates a worker pool with the given number of workers.
func NewWorkerPool(workers int, logger *slog.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		workers: workers,
		logger:  logger,
	}
}

// ComputeAccelerations fills accel with the acceleration on every body.
// Returns the first degenerate pair found by any worker.
func (wp *WorkerPool) ComputeAccelerations(bodies []body.Body, accel []r3.Vec) error {
	n := len(bodies)
	workers := wp.workers
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			return computeRange(bodies, accel, lo, hi)
		})
	}

	if err := g.Wait(); err != nil {
		wp.logger.Debug("compute phase aborted", "component", "gravity", "error", err)
		return err
	}
	return nil
}
