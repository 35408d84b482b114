package ephemeris

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheWriteAndLoadLatest(t *testing.T) {
	c := NewCache(t.TempDir(), 3)
	src := "https://example.test/eph.txt"
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		data := []byte{byte('a' + i)}
		if err := c.Write(src, data, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}

	data, ts, err := c.LoadLatest(src)
	if err != nil {
		t.Fatalf("LoadLatest: %v", err)
	}
	if string(data) != "e" {
		t.Errorf("data = %q, want %q", data, "e")
	}
	if !ts.Equal(base.Add(4 * time.Hour)) {
		t.Errorf("ts = %v, want %v", ts, base.Add(4*time.Hour))
	}

	entries, err := os.ReadDir(c.sourceDir(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Errorf("files after prune = %d, want 3", len(entries))
	}
}

func TestCacheSourcesAreIsolated(t *testing.T) {
	c := NewCache(t.TempDir(), 0)
	now := time.Now()
	if err := c.Write("http://a.test/x", []byte("A"), now); err != nil {
		t.Fatal(err)
	}
	if err := c.Write("http://b.test/x", []byte("B"), now); err != nil {
		t.Fatal(err)
	}

	for src, want := range map[string]string{"http://a.test/x": "A", "http://b.test/x": "B"} {
		data, _, err := c.LoadLatest(src)
		if err != nil || string(data) != want {
			t.Errorf("LoadLatest(%s) = %q, %v; want %q", src, data, err, want)
		}
	}
}

func TestCacheEmpty(t *testing.T) {
	c := NewCache(filepath.Join(t.TempDir(), "missing"), 5)
	if _, _, err := c.LoadLatest("http://a.test/x"); err == nil {
		t.Error("expected error for empty cache, got nil")
	}
}

func TestCacheIgnoresForeignFiles(t *testing.T) {
	c := NewCache(t.TempDir(), 5)
	src := "http://a.test/x"
	if err := c.Write(src, []byte("good"), time.Now()); err != nil {
		t.Fatal(err)
	}
	dir := c.sourceDir(src)
	for _, name := range []string{"notes.txt", "eph_abc.txt", "eph_99999999999999999.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("bad"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	data, _, err := c.LoadLatest(src)
	if err != nil || string(data) != "good" {
		t.Errorf("LoadLatest = %q, %v; want %q", data, err, "good")
	}
}
