// Package parallel provides chunked worker helpers for embarrassingly
// parallel loops. The bootstrap resampler is the main consumer: each
// simulation is independent and workers share no mutable state.
package parallel

import (
	"runtime"
	"sync"
)

// Run splits [0, items) into contiguous chunks, one per available CPU, and
// invokes fn(start, end) for each chunk from its own goroutine. It returns
// after all chunks complete. fn must be safe to call concurrently on
// disjoint ranges.
func Run(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	workers := runtime.NumCPU()
	if workers > items {
		workers = items
	}

	// Ceiling division so the last chunk picks up the remainder.
	chunk := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunk {
		end := start + chunk
		if end > items {
			end = items
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// RunThreshold behaves like Run but falls back to a single sequential call
// when items does not exceed threshold. Small inputs are not worth the
// goroutine overhead.
func RunThreshold(items, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}
	Run(items, fn)
}
