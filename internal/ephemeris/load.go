package ephemeris

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/star/gravsim/internal/body"
	"github.com/star/gravsim/internal/gravity"
	"github.com/star/gravsim/internal/transform"
)

// IsRemote reports whether source names an http(s) URL rather than a file.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// ReadSource returns the raw ephemeris text at source, a file path or URL.
func ReadSource(ctx context.Context, source string, logger *slog.Logger) ([]byte, error) {
	if IsRemote(source) {
		return NewFetcher(source, logger).Fetch(ctx)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading ephemeris file: %w", err)
	}
	return data, nil
}

// Resolve converts parsed records into bodies, failing on the first record
// that does not resolve.
func Resolve(records []Record) ([]body.Body, error) {
	bodies := make([]body.Body, 0, len(records))
	for _, rec := range records {
		b, err := transform.Resolve(rec.Name, rec.Mass, rec.First, rec.Second)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", rec.Name, err)
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

// ReadThrough reads source like ReadSource. A successful remote download is
// saved to the cache; a failed one falls back to the newest saved copy.
func (c *Cache) ReadThrough(ctx context.Context, source string, logger *slog.Logger) ([]byte, error) {
	if !IsRemote(source) {
		return ReadSource(ctx, source, logger)
	}

	data, fetchErr := ReadSource(ctx, source, logger)
	if fetchErr == nil {
		if err := c.Write(source, data, time.Now()); err != nil {
			logger.Warn("failed to cache ephemeris download",
				"component", "ephemeris",
				"source", source,
				"error", err,
			)
		}
		return data, nil
	}

	data, ts, err := c.LoadLatest(source)
	if err != nil {
		return nil, fetchErr
	}
	logger.Warn("ephemeris fetch failed, using cached copy",
		"component", "ephemeris",
		"source", source,
		"cached_at", ts.UTC().Format(time.RFC3339),
		"error", fetchErr,
	)
	return data, nil
}

// Load reads, parses and resolves the ephemeris at source into a new System.
// Any failure aborts the whole load.
func Load(ctx context.Context, source string, cfg gravity.Config, logger *slog.Logger) (*gravity.System, error) {
	return LoadCached(ctx, source, nil, cfg, logger)
}

// LoadCached is Load with remote sources read through cache. cache may be nil.
func LoadCached(ctx context.Context, source string, cache *Cache, cfg gravity.Config, logger *slog.Logger) (*gravity.System, error) {
	var (
		data []byte
		err  error
	)
	if cache != nil {
		data, err = cache.ReadThrough(ctx, source, logger)
	} else {
		data, err = ReadSource(ctx, source, logger)
	}
	if err != nil {
		return nil, err
	}

	records, err := Parse(bytes.NewReader(data), logger)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}

	bodies, err := Resolve(records)
	if err != nil {
		return nil, err
	}

	sys := gravity.NewSystem(cfg, logger)
	for _, b := range bodies {
		sys.AddBody(b)
	}

	logger.Info("ephemeris loaded",
		"component", "ephemeris",
		"source", source,
		"bodies", sys.Len(),
	)
	return sys, nil
}
