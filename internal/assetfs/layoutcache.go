package assetfs

import (
	"bytes"
	"compress/zlib"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// layoutCacheEntry is the flat, pointer-free envelope stored on disk for a
// generated layout: the already-rendered external-schema JSON plus enough
// of the request to validate a hit. Caching the JSON export rather than a
// *layout.Layout sidesteps gob's inability to round-trip the layout's
// cyclic door-adjacency pointers, while still giving repeated CLI
// invocations over the same (sublevel, seed) a real disk cache to hit,
// the same shape as the donor's GameSave/ConfigSave blobs in encoding.go.
type layoutCacheEntry struct {
	Sublevel string
	Seed     uint32
	JSON     []byte
}

// LayoutCache persists generated-layout JSON exports under a directory, one
// gob+zlib blob per (sublevel, seed) pair. It serves the CLI's -cache flag
// (cmd/caveripper), for workflows that re-request the same layout
// repeatedly; cmd/caveripper-view does not use it, and the search driver's hot loop never
// uses it; that path regenerates every seed fresh per spec §5, which
// states the only shared mutable state is the caveinfo cache.
type LayoutCache struct {
	dir string
}

// NewLayoutCache builds a cache rooted at dir, creating it if necessary.
func NewLayoutCache(dir string) (*LayoutCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("assetfs: layout cache: %w", err)
	}
	return &LayoutCache{dir: dir}, nil
}

func (c *LayoutCache) path(sublevel string, seed uint32) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s-%08x.glz", sublevel, seed))
}

// Get returns the cached JSON export for (sublevel, seed), if present.
func (c *LayoutCache) Get(sublevel string, seed uint32) ([]byte, bool) {
	f, err := os.Open(c.path(sublevel, seed))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, false
	}
	defer zr.Close()

	var entry layoutCacheEntry
	if err := gob.NewDecoder(zr).Decode(&entry); err != nil {
		return nil, false
	}
	if entry.Sublevel != sublevel || entry.Seed != seed {
		return nil, false
	}
	return entry.JSON, true
}

// Put stores json as the cached export for (sublevel, seed), overwriting
// any existing entry.
func (c *LayoutCache) Put(sublevel string, seed uint32, json []byte) error {
	entry := layoutCacheEntry{Sublevel: sublevel, Seed: seed, JSON: json}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(entry); err != nil {
		return fmt.Errorf("assetfs: layout cache: encode: %w", err)
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(raw.Bytes()); err != nil {
		zw.Close()
		return fmt.Errorf("assetfs: layout cache: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("assetfs: layout cache: compress: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return fmt.Errorf("assetfs: layout cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, &compressed); err != nil {
		tmp.Close()
		return fmt.Errorf("assetfs: layout cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("assetfs: layout cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(sublevel, seed)); err != nil {
		return fmt.Errorf("assetfs: layout cache: %w", err)
	}
	return nil
}
