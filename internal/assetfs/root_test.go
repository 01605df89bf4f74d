package assetfs

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestOnceCacheComputesOnce(t *testing.T) {
	c := newOnceCache[string, int]()
	var calls atomic.Int32

	compute := func() (int, error) {
		calls.Add(1)
		return 42, nil
	}

	for i := 0; i < 10; i++ {
		v, err := c.get("k", compute)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if v != 42 {
			t.Errorf("get: got %d, want 42", v)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("compute called %d times, want exactly 1", calls.Load())
	}
}

func TestOnceCacheDistinctKeys(t *testing.T) {
	c := newOnceCache[string, int]()
	a, _ := c.get("a", func() (int, error) { return 1, nil })
	b, _ := c.get("b", func() (int, error) { return 2, nil })
	if a != 1 || b != 2 {
		t.Errorf("got a=%d b=%d, want 1, 2", a, b)
	}
}

func writeFixture(t *testing.T, dir string) {
	t.Helper()
	game := filepath.Join(dir, "pikmin2")
	if err := os.MkdirAll(game, 0o755); err != nil {
		t.Fatal(err)
	}
	config := "pikmin2, Shower Room, false, shx.txt, SCx\n" +
		"pikmin2, Hole of Heroes, true, hoh.txt, HoH\n"
	if err := os.WriteFile(filepath.Join(game, "caveinfo_config.txt"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRootCaveConfigsAndSublevel(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)
	r := NewRoot(dir)

	cfgs, err := r.CaveConfigs("pikmin2")
	if err != nil {
		t.Fatalf("CaveConfigs: %v", err)
	}
	if len(cfgs) != 2 {
		t.Fatalf("expected 2 cave configs, got %d", len(cfgs))
	}

	sl, err := r.Sublevel("pikmin2", "scx4")
	if err != nil {
		t.Fatalf("Sublevel: %v", err)
	}
	if sl.NormalizedName() != "SCx-4" {
		t.Errorf("got %s, want SCx-4", sl.NormalizedName())
	}

	if _, err := r.Sublevel("pikmin2", "zzz1"); err == nil {
		t.Error("expected an error resolving an unknown shortcode")
	}
}

func TestRootCaveConfigsIsCached(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir)
	r := NewRoot(dir)

	first, err := r.CaveConfigs("pikmin2")
	if err != nil {
		t.Fatalf("CaveConfigs: %v", err)
	}

	// Remove the backing file; a cached second call must still succeed.
	if err := os.RemoveAll(filepath.Join(dir, "pikmin2", "caveinfo_config.txt")); err != nil {
		t.Fatal(err)
	}
	second, err := r.CaveConfigs("pikmin2")
	if err != nil {
		t.Fatalf("CaveConfigs (cached): %v", err)
	}
	if len(first) != len(second) {
		t.Errorf("cached result differs from first: %d vs %d", len(first), len(second))
	}
}

func TestRootReadTextMissingFile(t *testing.T) {
	dir := t.TempDir()
	r := NewRoot(dir)
	if _, err := r.ReadText("pikmin2/does_not_exist.txt"); err == nil {
		t.Error("expected an error reading a nonexistent file")
	}
}
