// Command gravsim loads an observation file, prints the initial state of every
// body, simulates the requested number of days in one-minute steps and prints
// the final state.
//
// Usage:
//
//	gravsim <input_file> <days>
//
// Diagnostics go to stderr as JSON; stdout carries only the two reports.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/star/gravsim/internal/api"
	"github.com/star/gravsim/internal/ephemeris"
	"github.com/star/gravsim/internal/events"
	"github.com/star/gravsim/internal/gravity"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gravsim <input_file> <days>",
		Short: "Simulate Newtonian gravity between bodies resolved from sky observations",
		Long: `gravsim reads bodies described by two observations taken one hour apart
(right ascension, declination, geocentric distance), resolves them to
heliocentric positions and velocities in AU and AU/minute, and advances the
system one minute per step for the requested number of days.

Input file format, one record per three lines:

  <name> <mass in 10^24 kg>
  <ra_h> <ra_m> <ra_s> <dec_d> <dec_m> <dec_s> <delta_au>
  <ra_h> <ra_m> <ra_s> <dec_d> <dec_m> <dec_s> <delta_au>

<input_file> may also be an http(s) URL.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(os.Stderr, loadLogLevel())
			days, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				logger.Error("invalid days argument", "value", args[1], "error", err)
				return fmt.Errorf("parsing days %q: %w", args[1], err)
			}
			if err := run(cmd.Context(), args[0], days, cmd.OutOrStdout(), logger); err != nil {
				logger.Error("gravsim failed", "error", err)
				return err
			}
			return nil
		},
	}
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// run loads the system, prints the initial report, simulates and prints the
// final report. SIGINT/SIGTERM cancel the run.
func run(parent context.Context, source string, days float64, out io.Writer, logger *slog.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gravCfg := loadGravityConfig(logger)
	sys, err := ephemeris.LoadCached(ctx, source, loadEphemerisCache(logger), gravCfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprint(out, sys.Report())
	fmt.Fprintln(out)

	store := gravity.NewSnapshotStore()
	var pubs []gravity.Publisher

	if redisCfg := loadRedisConfig(logger); redisCfg.Addr != "" {
		pub, err := events.NewRedisPublisher(ctx, redisCfg, logger)
		if err != nil {
			logger.Warn("redis publisher disabled", "error", err)
		} else {
			defer pub.Close()
			pubs = append(pubs, pub)
		}
	}

	httpCfg, err := loadHTTPConfig(logger)
	if err != nil {
		return err
	}
	var srv *api.Server
	if httpCfg.Addr != "" {
		srv = api.NewServer(httpCfg, store, logger)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server listen error", "error", err)
			}
		}()
		defer shutdown(srv, logger)
	}

	runCfg := loadRunConfig(logger)
	runCfg.Steps = gravity.StepsForDays(days)

	runner := gravity.NewRunner(sys, store, logger, pubs...)
	if err := runner.Run(ctx, runCfg); err != nil {
		return err
	}

	fmt.Fprint(out, sys.Report())
	fmt.Fprintln(out)

	if srv != nil && loadServeAfterRun(logger) {
		logger.Info("run finished, serving until interrupted", "addr", httpCfg.Addr)
		<-ctx.Done()
	}
	return nil
}

func shutdown(srv *api.Server, logger *slog.Logger) {
	logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.HTTPServer().Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return
	}
	logger.Info("server stopped")
}
