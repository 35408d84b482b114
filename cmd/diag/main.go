// Command diag checks an observation file before a long run: it prints the
// resolved state of every body, how well each observation survives a
// Cartesian round trip, and how far energy and momentum drift over a short
// simulation.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/star/gravsim/internal/body"
	"github.com/star/gravsim/internal/ephemeris"
	"github.com/star/gravsim/internal/gravity"
	"github.com/star/gravsim/internal/transform"
)

func main() {
	cmd := &cobra.Command{
		Use:          "diag <input_file> [days]",
		Short:        "Inspect resolved bodies and integration drift for an observation file",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 1.0
			if len(args) == 2 {
				d, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("parsing days %q: %w", args[1], err)
				}
				days = d
			}
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
			return diagnose(cmd.Context(), args[0], days, cmd.OutOrStdout(), logger)
		},
	}
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func diagnose(ctx context.Context, source string, days float64, out io.Writer, logger *slog.Logger) error {
	data, err := ephemeris.ReadSource(ctx, source, logger)
	if err != nil {
		return err
	}
	records, err := ephemeris.Parse(bytes.NewReader(data), logger)
	if err != nil {
		return err
	}
	bodies, err := ephemeris.Resolve(records)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %d bodies from %s\n\n", len(bodies), source)

	for i, b := range bodies {
		fmt.Fprintf(out, "Body %d: %s\n", i+1, b.Info())
		fmt.Fprintf(out, "  mass=%g  |v|=%.6g AU/min\n", b.Mass, r3.Norm(b.Velocity))
	}

	fmt.Fprintln(out, "\nObservation round trip:")
	for i, rec := range records {
		fmt.Fprintf(out, "  %-10s %s\n", rec.Name, roundTrip(rec.First, bodies[i]))
	}

	sys := gravity.NewSystem(gravity.Config{Workers: 1}, logger)
	for _, b := range bodies {
		sys.AddBody(b)
	}
	e0, p0 := sys.Energy(), sys.Momentum()
	fmt.Fprintf(out, "\nInitial energy:   %.9e\n", e0)
	fmt.Fprintf(out, "Initial momentum: (%.6e,%.6e,%.6e)\n", p0.X, p0.Y, p0.Z)

	steps := gravity.StepsForDays(days)
	runner := gravity.NewRunner(sys, nil, logger)
	if err := runner.Run(ctx, gravity.RunConfig{Steps: steps}); err != nil {
		return err
	}

	e1, p1 := sys.Energy(), sys.Momentum()
	fmt.Fprintf(out, "\nAfter %g days (%d steps):\n", days, steps)
	fmt.Fprintf(out, "  energy drift:   %.3e (relative)\n", gravity.RelativeDrift(e0, e1))
	pd := r3.Norm(r3.Sub(p1, p0))
	if n := r3.Norm(p0); n > 0 {
		pd /= n
	}
	fmt.Fprintf(out, "  momentum drift: %.3e (relative)\n", pd)

	var farthest body.Body
	for _, b := range sys.Bodies() {
		if b.Distance() > farthest.Distance() {
			farthest = b
		}
	}
	if farthest.Name != "" {
		fmt.Fprintf(out, "  farthest body:  %s at %.6g AU\n", farthest.Name, farthest.Distance())
	}
	return nil
}

// roundTrip reports how far the resolved position lands from the first
// observation when converted back to angles.
func roundTrip(obs transform.Observation, b body.Body) string {
	back := transform.ObservationFromPoint(b.Position)
	dra := math.Abs(back.Ascension - obs.Ascension)
	if dra > math.Pi {
		dra = 2*math.Pi - dra
	}
	ddec := math.Abs(back.Declination - obs.Declination)
	ddelta := math.Abs(back.Delta - obs.Delta)
	return fmt.Sprintf("dRA=%.3g rad  dDec=%.3g rad  dDelta=%.3g AU", dra, ddec, ddelta)
}
