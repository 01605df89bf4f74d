// Package assetfs implements the on-disk asset root: reading caveinfo and
// map-unit text files by path, and caching parsed floor specs keyed by
// (game, cave) so repeated seed searches over the same sublevel don't
// re-parse its caveinfo file on every seed.
package assetfs

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/mayabyte/caveripper/caveinfo"
)

// Root is a directory tree laid out as one subdirectory per game (e.g.
// "pikmin2"), each containing that game's caveinfo_config.txt, caveinfo
// files, and map-unit folders.
type Root struct {
	baseDir string

	cfgCache  *onceCache[string, []caveinfo.CaveConfig]
	caveCache *onceCache[string, []caveinfo.CaveInfo]
}

// NewRoot builds an asset root rooted at baseDir. Nothing is read until
// the first CaveConfigs/CaveInfo/ReadText call.
func NewRoot(baseDir string) *Root {
	return &Root{
		baseDir:   baseDir,
		cfgCache:  newOnceCache[string, []caveinfo.CaveConfig](),
		caveCache: newOnceCache[string, []caveinfo.CaveInfo](),
	}
}

// ReadText implements caveinfo.FileReader, reading p relative to the asset
// root.
func (r *Root) ReadText(p string) (string, error) {
	b, err := os.ReadFile(filepath.Join(r.baseDir, filepath.FromSlash(p)))
	if err != nil {
		return "", fmt.Errorf("assetfs: %w", err)
	}
	return string(b), nil
}

// CaveConfigs returns game's parsed caveinfo_config.txt index, loading and
// caching it on first access.
func (r *Root) CaveConfigs(game string) ([]caveinfo.CaveConfig, error) {
	return r.cfgCache.get(game, func() ([]caveinfo.CaveConfig, error) {
		text, err := r.ReadText(path.Join(game, "caveinfo_config.txt"))
		if err != nil {
			return nil, err
		}
		return caveinfo.LoadCaveConfigs(game, text)
	})
}

// Sublevel resolves a shortcode like "scx7" against game's cave index.
func (r *Root) Sublevel(game, shortcode string) (caveinfo.Sublevel, error) {
	cfgs, err := r.CaveConfigs(game)
	if err != nil {
		return caveinfo.Sublevel{}, err
	}
	return caveinfo.ResolveSublevel(cfgs, shortcode)
}

func (r *Root) floorsFor(cfg caveinfo.CaveConfig) ([]caveinfo.CaveInfo, error) {
	key := cfg.Game + "/" + cfg.CaveinfoFilename
	return r.caveCache.get(key, func() ([]caveinfo.CaveInfo, error) {
		return caveinfo.LoadCaveinfo(r, cfg)
	})
}

// CaveInfo implements query.CaveInfoProvider: it resolves s's cave's full
// per-floor caveinfo (loading and caching the whole cave on first access)
// and returns the one floor s names.
func (r *Root) CaveInfo(s caveinfo.Sublevel) (*caveinfo.CaveInfo, error) {
	floors, err := r.floorsFor(s.Cfg)
	if err != nil {
		return nil, err
	}
	for i := range floors {
		if floors[i].FloorNum == s.Floor {
			return &floors[i], nil
		}
	}
	return nil, fmt.Errorf("assetfs: sublevel %s: floor %d not found in %s", s.NormalizedName(), s.Floor, s.Cfg.CaveinfoFilename)
}
