package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mayabyte/caveripper/query"
)

// fakeQuery matches by a predicate over the raw seed, so these tests can
// exercise the driver's concurrency and cancellation behavior without a
// real asset-backed CaveInfoProvider or a full layout build.
type fakeQuery struct {
	match func(seed uint32) bool
	err   error
}

func (f fakeQuery) Matches(seed uint32, _ query.CaveInfoProvider) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.match(seed), nil
}

func drain(t *testing.T, ch <-chan uint32, timeout time.Duration) []uint32 {
	t.Helper()
	var got []uint32
	deadline := time.After(timeout)
	for {
		select {
		case seed, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, seed)
		case <-deadline:
			t.Fatal("timed out waiting for search to finish")
			return nil
		}
	}
}

func TestRunFindsMatchingSeeds(t *testing.T) {
	q := fakeQuery{match: func(seed uint32) bool { return seed%97 == 0 }}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := Run(ctx, q, nil, Options{Workers: 4, MaxHits: 5})
	got := drain(t, out, 10*time.Second)

	if len(got) != 5 {
		t.Fatalf("expected exactly 5 hits, got %d: %v", len(got), got)
	}
	for _, seed := range got {
		if seed%97 != 0 {
			t.Errorf("seed %d does not satisfy the query", seed)
		}
	}
}

func TestRunRespectsDeadline(t *testing.T) {
	q := fakeQuery{match: func(seed uint32) bool { return false }}
	ctx := context.Background()

	start := time.Now()
	out := Run(ctx, q, nil, Options{Workers: 2, Deadline: start.Add(50 * time.Millisecond)})
	drain(t, out, 5*time.Second)

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("search ran for %v, expected it to stop shortly after its deadline", elapsed)
	}
}

func TestRunRespectsContextCancellation(t *testing.T) {
	q := fakeQuery{match: func(seed uint32) bool { return false }}
	ctx, cancel := context.WithCancel(context.Background())

	out := Run(ctx, q, nil, Options{Workers: 2})
	time.AfterFunc(20*time.Millisecond, cancel)
	drain(t, out, 5*time.Second)
}

func TestRunSeedRangeExhaustsExactlyOnce(t *testing.T) {
	const n = 2000
	var seen [n]int32
	q := fakeQuery{match: func(seed uint32) bool {
		seen[seed]++
		return false
	}}
	ctx := context.Background()

	out := Run(ctx, q, nil, Options{Workers: 3, SeedRange: &SeedRange{Start: 0, End: n}})
	drain(t, out, 10*time.Second)

	for seed, count := range seen {
		if count != 1 {
			t.Errorf("seed %d visited %d times, want exactly 1", seed, count)
		}
	}
}

func TestRunLogsAndContinuesOnPerSeedError(t *testing.T) {
	calls := 0
	q := fakeQuery{err: errors.New("boom")}
	_ = calls
	ctx := context.Background()

	out := Run(ctx, q, nil, Options{Workers: 1, Deadline: time.Now().Add(30 * time.Millisecond)})
	got := drain(t, out, 5*time.Second)
	if len(got) != 0 {
		t.Errorf("expected no hits when every seed errors, got %v", got)
	}
}
