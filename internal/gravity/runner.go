package gravity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/star/gravsim/internal/body"
	"github.com/star/gravsim/internal/metrics"
)

// StepsForDays returns how many one-minute steps cover days: the number of
// integers i with 0 <= i < 1440*days.
func StepsForDays(days float64) int64 {
	if !(days > 0) || math.IsInf(days, 0) {
		return 0
	}
	return int64(math.Ceil(body.MinutesPerDay * days))
}

// Runner drives a System through a fixed number of steps, publishing
// snapshots along the way.
type Runner struct {
	sys    *System
	store  *SnapshotStore
	pubs   []Publisher
	logger *slog.Logger
}

// NewRunner creates a runner. store may be nil; nil publishers are ignored.
func NewRunner(sys *System, store *SnapshotStore, logger *slog.Logger, pubs ...Publisher) *Runner {
	var active []Publisher
	for _, p := range pubs {
		if p != nil {
			active = append(active, p)
		}
	}
	return &Runner{
		sys:    sys,
		store:  store,
		pubs:   active,
		logger: logger,
	}
}

// Run advances the system cfg.Steps times. It stops early on context
// cancellation or the first failed step; the system keeps the last good state.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) error {
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 5 * time.Second
	}

	metrics.SetBodies(r.sys.Len())
	r.logger.Info("simulation starting",
		"component", "runner",
		"bodies", r.sys.Len(),
		"steps", cfg.Steps,
		"snapshot_every", cfg.SnapshotEvery,
	)

	start := time.Now()
	lastProgress := start
	r.publish(ctx)

	for i := int64(0); i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			r.logger.Warn("simulation cancelled",
				"component", "runner",
				"completed_steps", i,
				"requested_steps", cfg.Steps,
			)
			return ctx.Err()
		default:
		}

		stepStart := time.Now()
		if err := r.sys.AdvanceStep(); err != nil {
			if errors.Is(err, body.ErrDegenerateGeometry) {
				metrics.IncDegenerateSteps()
			}
			r.logger.Error("step failed",
				"component", "runner",
				"step", r.sys.Steps()+1,
				"error", err,
			)
			return fmt.Errorf("step %d: %w", r.sys.Steps()+1, err)
		}
		metrics.RecordStep(time.Since(stepStart))
		metrics.SetSimulatedMinutes(r.sys.ElapsedMinutes())

		if cfg.SnapshotEvery > 0 && r.sys.Steps()%cfg.SnapshotEvery == 0 && i+1 < cfg.Steps {
			r.publish(ctx)
		}

		if now := time.Now(); now.Sub(lastProgress) >= cfg.ProgressEvery {
			lastProgress = now
			r.logger.Info("simulation progress",
				"component", "runner",
				"step", r.sys.Steps(),
				"requested_steps", cfg.Steps,
				"simulated_days", r.sys.ElapsedMinutes()/body.MinutesPerDay,
			)
		}
	}

	r.publish(ctx)

	duration := time.Since(start)
	r.logger.Info("simulation complete",
		"component", "runner",
		"steps", cfg.Steps,
		"duration_ms", duration.Milliseconds(),
	)
	return nil
}

// publish stores a fresh snapshot and hands it to every publisher.
// Publisher failures are logged and counted but never stop the run.
func (r *Runner) publish(ctx context.Context) {
	if r.store == nil && len(r.pubs) == 0 {
		return
	}
	snap := r.sys.Snapshot()
	if r.store != nil {
		r.store.Set(snap)
	}
	for _, p := range r.pubs {
		if err := p.Publish(ctx, snap); err != nil {
			metrics.IncPublishErrors(fmt.Sprintf("%T", p))
			r.logger.Warn("snapshot publish failed",
				"component", "runner",
				"step", snap.Step,
				"error", err,
			)
		}
	}
}
