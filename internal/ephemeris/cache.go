package ephemeris

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Cache keeps recent downloads of remote ephemeris sources on disk so a run
// can fall back to the last good copy when the source is unreachable.
// Each source URL gets its own subdirectory.
type Cache struct {
	dir      string
	maxFiles int
}

// NewCache creates a Cache rooted at dir that keeps at most maxFiles
// downloads per source.
func NewCache(dir string, maxFiles int) *Cache {
	if maxFiles <= 0 {
		maxFiles = 5
	}
	return &Cache{
		dir:      dir,
		maxFiles: maxFiles,
	}
}

// Write saves data for source under a timestamped name and prunes the oldest
// files beyond maxFiles.
func (c *Cache) Write(source string, data []byte, ts time.Time) error {
	dir := c.sourceDir(source)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("eph_%d.txt", ts.UnixNano()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return c.prune(dir)
}

// LoadLatest returns the newest cached copy of source and when it was saved.
func (c *Cache) LoadLatest(source string) ([]byte, time.Time, error) {
	dir := c.sourceDir(source)
	files, err := listFiles(dir)
	if err != nil {
		return nil, time.Time{}, err
	}
	if len(files) == 0 {
		return nil, time.Time{}, fmt.Errorf("no cached copy of %s", source)
	}

	latest := files[len(files)-1]
	data, err := os.ReadFile(filepath.Join(dir, latest.name))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("reading cache file: %w", err)
	}
	return data, latest.ts, nil
}

func (c *Cache) sourceDir(source string) string {
	sum := sha256.Sum256([]byte(source))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:8]))
}

type cacheFile struct {
	name string
	ts   time.Time
}

// listFiles returns cache files in dir, oldest first. A missing dir is empty.
func listFiles(dir string) ([]cacheFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing cache dir: %w", err)
	}

	var files []cacheFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		stamp, ok := strings.CutPrefix(name, "eph_")
		if !ok {
			continue
		}
		stamp, ok = strings.CutSuffix(stamp, ".txt")
		if !ok {
			continue
		}
		nanos, err := strconv.ParseInt(stamp, 10, 64)
		if err != nil {
			continue
		}
		files = append(files, cacheFile{name: name, ts: time.Unix(0, nanos)})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ts.Before(files[j].ts)
	})
	return files, nil
}

func (c *Cache) prune(dir string) error {
	files, err := listFiles(dir)
	if err != nil {
		return err
	}
	if len(files) <= c.maxFiles {
		return nil
	}

	for _, f := range files[:len(files)-c.maxFiles] {
		if err := os.Remove(filepath.Join(dir, f.name)); err != nil {
			return fmt.Errorf("pruning cache file %s: %w", f.name, err)
		}
	}
	return nil
}
