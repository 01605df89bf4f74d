// Command caveripper is the CLI surface over the cave generator: given a
// sublevel and either a concrete seed or a structural query, it either
// prints the one generated layout or searches for seeds matching the
// query.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mayabyte/caveripper/caveinfo"
	"github.com/mayabyte/caveripper/internal/assetfs"
	"github.com/mayabyte/caveripper/layout"
	"github.com/mayabyte/caveripper/query"
	"github.com/mayabyte/caveripper/search"
)

func main() {
	log.SetPrefix("caveripper: ")
	log.SetFlags(0)
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("caveripper", flag.ContinueOnError)
	assetRoot := fs.String("assets", ".", "path to the asset root directory (contains one subdirectory per game)")
	game := fs.String("game", "pikmin2", "game tag, selects the subdirectory of the asset root to load")
	sublevel := fs.String("sublevel", "", "sublevel shortcode, e.g. scx7 (required unless -query names its own)")
	seedStr := fs.String("seed", "", "generate this seed's layout and print it (hex, e.g. 0x1234ABCD, or decimal)")
	queryStr := fs.String("query", "", "search for a seed matching this structural query instead of generating one")
	workers := fs.Int("workers", 0, "number of search worker goroutines (0 = hardware parallelism)")
	timeout := fs.Duration("timeout", 30*time.Second, "search timeout")
	maxHits := fs.Int("max-hits", 1, "stop the search after finding this many matches (0 = unbounded, run until timeout)")
	cacheDir := fs.String("cache", "", "directory to memoize generated-layout JSON exports in (disabled unless set)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: caveripper -assets DIR -sublevel CODE {-seed SEED | -query QUERY}\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	root := assetfs.NewRoot(*assetRoot)

	switch {
	case *queryStr != "":
		return runQuery(root, *game, *queryStr, *workers, *timeout, *maxHits)
	case *seedStr != "":
		return runGenerate(root, *game, *sublevel, *seedStr, *cacheDir)
	default:
		log.Print("one of -seed or -query is required")
		fs.Usage()
		return 2
	}
}

func runGenerate(root *assetfs.Root, game, sublevelCode, seedStr, cacheDir string) int {
	if sublevelCode == "" {
		log.Print("-sublevel is required with -seed")
		return 2
	}
	seed, err := parseSeed(seedStr)
	if err != nil {
		log.Print(err)
		return 2
	}
	sl, err := root.Sublevel(game, sublevelCode)
	if err != nil {
		log.Print(err)
		return 2
	}

	var cache *assetfs.LayoutCache
	if cacheDir != "" {
		cache, err = assetfs.NewLayoutCache(cacheDir)
		if err != nil {
			log.Print(err)
			return 1
		}
		if cached, ok := cache.Get(sl.NormalizedName(), seed); ok {
			fmt.Println(string(cached))
			return 0
		}
	}

	ci, err := root.CaveInfo(sl)
	if err != nil {
		log.Print(err)
		return 2
	}

	l := layout.Generate(seed, ci)
	out, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		log.Print(err)
		return 1
	}
	fmt.Println(string(out))

	if cache != nil {
		if err := cache.Put(sl.NormalizedName(), seed, out); err != nil {
			log.Printf("caching layout: %v", err)
		}
	}
	return 0
}

func runQuery(root *assetfs.Root, game, queryStr string, workers int, timeout time.Duration, maxHits int) int {
	cfgs, err := root.CaveConfigs(game)
	if err != nil {
		log.Print(err)
		return 2
	}
	q, err := query.Try(queryStr, cfgs)
	if err != nil {
		log.Print(err)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	notify(cancel)

	found := 0
	for seed := range search.Run(ctx, q, root, search.Options{Workers: workers, MaxHits: maxHits}) {
		fmt.Printf("0x%08X\n", seed)
		found++
	}
	if found == 0 {
		log.Print("no matching seed found within the timeout")
		return 1
	}
	return 0
}

// notify wires SIGINT/SIGTERM to cancel, so an interactive search stops
// promptly instead of running to its full timeout.
func notify(cancel context.CancelFunc) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()
}

func parseSeed(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	n, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid seed %q: %w", s, err)
	}
	return uint32(n), nil
}

var _ caveinfo.FileReader = (*assetfs.Root)(nil)
