package main

import (
	"errors"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/star/gravsim/internal/api"
	"github.com/star/gravsim/internal/auth"
	"github.com/star/gravsim/internal/ephemeris"
	"github.com/star/gravsim/internal/events"
	"github.com/star/gravsim/internal/gravity"
	"github.com/star/gravsim/internal/stream"
)

// loadLogLevel reads GRAVSIM_LOG_LEVEL. Unknown values fall back to info.
func loadLogLevel() slog.Level {
	switch strings.ToLower(os.Getenv("GRAVSIM_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// envPositiveInt returns the integer in key, or def when the variable is
// unset or not a positive integer.
func envPositiveInt(logger *slog.Logger, key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		logger.Warn("invalid "+key+" value, using default", "value", v, "default", def)
		return def
	}
	return n
}

func envBool(logger *slog.Logger, key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger.Warn("invalid "+key+" value, using default", "value", v, "default", def)
		return def
	}
	return b
}

func loadGravityConfig(logger *slog.Logger) gravity.Config {
	cfg := gravity.Config{
		Workers:           envPositiveInt(logger, "GRAVSIM_WORKERS", runtime.NumCPU()),
		ParallelThreshold: envPositiveInt(logger, "GRAVSIM_PARALLEL_THRESHOLD", 64),
	}

	logger.Info("gravity config",
		"workers", cfg.Workers,
		"parallel_threshold", cfg.ParallelThreshold,
	)
	return cfg
}

func loadRunConfig(logger *slog.Logger) gravity.RunConfig {
	cfg := gravity.RunConfig{
		SnapshotEvery: 1440,
		ProgressEvery: 5 * time.Second,
	}

	// 0 is meaningful here: no intermediate snapshots.
	if v := os.Getenv("GRAVSIM_SNAPSHOT_EVERY"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			logger.Warn("invalid GRAVSIM_SNAPSHOT_EVERY value, using default", "value", v, "default", 1440)
		} else {
			cfg.SnapshotEvery = n
		}
	}

	cfg.ProgressEvery = time.Duration(envPositiveInt(logger, "GRAVSIM_PROGRESS_INTERVAL", 5)) * time.Second

	logger.Info("run config",
		"snapshot_every", cfg.SnapshotEvery,
		"progress_interval_seconds", cfg.ProgressEvery.Seconds(),
	)
	return cfg
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("GRAVSIM_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("GRAVSIM_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("GRAVSIM_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("GRAVSIM_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

func loadStreamConfig(logger *slog.Logger) stream.Config {
	cfg := stream.Config{
		MaxConcurrentPerIP: envPositiveInt(logger, "GRAVSIM_STREAM_MAX_CONCURRENT", 10),
		MessagesPerSecond:  2,
		KeepaliveInterval:  time.Duration(envPositiveInt(logger, "GRAVSIM_STREAM_KEEPALIVE_INTERVAL", 30)) * time.Second,
	}

	if v := os.Getenv("GRAVSIM_STREAM_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !(f > 0) {
			logger.Warn("invalid GRAVSIM_STREAM_RATE value, using default", "value", v, "default", 2)
		} else {
			cfg.MessagesPerSecond = f
		}
	}

	logger.Info("stream config",
		"max_concurrent_per_ip", cfg.MaxConcurrentPerIP,
		"messages_per_second", cfg.MessagesPerSecond,
		"keepalive_interval_seconds", cfg.KeepaliveInterval.Seconds(),
	)
	return cfg
}

// loadHTTPConfig returns a config with an empty Addr when the observation
// server is disabled.
func loadHTTPConfig(logger *slog.Logger) (api.Config, error) {
	cfg := api.Config{Addr: os.Getenv("GRAVSIM_HTTP_ADDR")}
	if cfg.Addr == "" {
		return cfg, nil
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		return cfg, err
	}
	cfg.Auth = authCfg
	cfg.Stream = loadStreamConfig(logger)
	cfg.TrustProxy = envBool(logger, "GRAVSIM_TRUST_PROXY", false)
	return cfg, nil
}

func loadRedisConfig(logger *slog.Logger) events.RedisConfig {
	cfg := events.RedisConfig{
		Addr:    os.Getenv("GRAVSIM_REDIS_ADDR"),
		Channel: events.DefaultChannel,
	}
	if v := os.Getenv("GRAVSIM_REDIS_CHANNEL"); v != "" {
		cfg.Channel = v
	}
	if cfg.Addr != "" {
		logger.Info("redis config", "addr", cfg.Addr, "channel", cfg.Channel)
	}
	return cfg
}

func loadServeAfterRun(logger *slog.Logger) bool {
	return envBool(logger, "GRAVSIM_SERVE_AFTER_RUN", false)
}

// loadEphemerisCache returns nil unless GRAVSIM_EPHEMERIS_CACHE_DIR is set.
func loadEphemerisCache(logger *slog.Logger) *ephemeris.Cache {
	dir := os.Getenv("GRAVSIM_EPHEMERIS_CACHE_DIR")
	if dir == "" {
		return nil
	}
	maxFiles := envPositiveInt(logger, "GRAVSIM_EPHEMERIS_CACHE_MAX_FILES", 5)
	logger.Info("ephemeris cache config", "dir", dir, "max_files", maxFiles)
	return ephemeris.NewCache(dir, maxFiles)
}
