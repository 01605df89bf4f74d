// Package search implements the parallel seed-search driver: given a
// structural query, find 32-bit seeds that satisfy it as fast as possible
// by sharding the search space across worker goroutines.
package search

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"log"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mayabyte/caveripper/query"
)

// Query is anything a search can run, matched structurally by
// *query.StructuralQuery rather than declared as an explicit dependency so
// test doubles don't need a real asset-backed provider.
type Query interface {
	Matches(seed uint32, provider query.CaveInfoProvider) (bool, error)
}

// SeedRange, when set, makes every worker draw seeds from one shared
// cursor over [Start, End) instead of generating them independently at
// random. Combined with Workers: 1 this gives deterministic, exhaustive
// enumeration; with more workers it still covers the range exactly once,
// just not in order.
type SeedRange struct {
	Start uint32
	End   uint64 // exclusive; use 1<<32 to cover through 0xFFFFFFFF
}

// Options configures a Run.
type Options struct {
	// Workers is the number of search goroutines. Zero defaults to
	// runtime.GOMAXPROCS(0), the machine's hardware parallelism.
	Workers int
	// Deadline, if non-zero, stops the search once passed.
	Deadline time.Time
	// MaxHits, if nonzero, stops the search once this many seeds have
	// been found and sent.
	MaxHits int
	// OnTick, if set, is called by every worker before it checks each
	// seed, e.g. to drive a progress counter.
	OnTick func()
	// SeedRange, if set, switches from independent random seed
	// generation to shared-cursor enumeration (see SeedRange).
	SeedRange *SeedRange
}

// Run searches for seeds matching q in parallel, emitting each match on
// the returned channel as soon as it's found. The channel is closed once
// the search stops, for any of: the deadline passing, MaxHits matches
// found, ctx being canceled, or (in SeedRange mode) the range being
// exhausted.
//
// Workers check for a stop condition only between seeds, never mid-layout-
// build, so the worst-case latency of any stop condition is one layout
// build per worker still in flight.
func Run(ctx context.Context, q Query, provider query.CaveInfoProvider, opts Options) <-chan uint32 {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make(chan uint32, workers)
	var numFound atomic.Int64
	var stopped atomic.Bool
	var cursor atomic.Uint64
	if opts.SeedRange != nil {
		cursor.Store(uint64(opts.SeedRange.Start))
	}

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			rng := newWorkerRNG()

			for {
				if stopped.Load() {
					return
				}
				select {
				case <-ctx.Done():
					stopped.Store(true)
					return
				default:
				}
				if !opts.Deadline.IsZero() && time.Now().After(opts.Deadline) {
					stopped.Store(true)
					return
				}
				if opts.MaxHits > 0 && numFound.Load() >= int64(opts.MaxHits) {
					stopped.Store(true)
					return
				}

				var seed uint32
				if opts.SeedRange != nil {
					n := cursor.Add(1) - 1
					if n >= opts.SeedRange.End {
						stopped.Store(true)
						return
					}
					seed = uint32(n)
				} else {
					seed = uint32(rng.Uint64())
				}

				if opts.OnTick != nil {
					opts.OnTick()
				}

				matched, err := evalSeed(q, provider, seed)
				if err != nil {
					log.Printf("search: seed %#08x: %v", seed, err)
					continue
				}
				if !matched {
					continue
				}

				if opts.MaxHits > 0 && numFound.Add(1) > int64(opts.MaxHits) {
					return
				}
				select {
				case out <- seed:
				case <-ctx.Done():
					stopped.Store(true)
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// evalSeed runs q.Matches, recovering from any panic so one misbehaving
// seed can't abort the whole search. The generator itself is specified to
// never panic for any seed; a panic reaching here is a bug to fix, not an
// expected occurrence, but the driver must stay up regardless.
func evalSeed(q Query, provider query.CaveInfoProvider, seed uint32) (matched bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic evaluating seed %#08x: %v", seed, r)
		}
	}()
	return q.Matches(seed, provider)
}

// newWorkerRNG builds a general-purpose PRNG for drawing candidate seeds
// to test, independent per worker so workers never contend on shared
// state. This is deliberately not pikminmath's game-accurate LCG: that one
// reproduces the original game's own draws inside a single layout build,
// while this one only has to pick 32-bit integers to try, so it uses a
// general-purpose generator from the standard library instead.
func newWorkerRNG() *rand.Rand {
	var buf [16]byte
	if _, err := crand.Read(buf[:]); err != nil {
		binary.LittleEndian.PutUint64(buf[:8], uint64(time.Now().UnixNano()))
		binary.LittleEndian.PutUint64(buf[8:], uint64(time.Now().UnixNano())^0x9e3779b97f4a7c15)
	}
	seed1 := binary.LittleEndian.Uint64(buf[:8])
	seed2 := binary.LittleEndian.Uint64(buf[8:])
	return rand.New(rand.NewPCG(seed1, seed2))
}
