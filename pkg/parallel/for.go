// Package parallel splits index ranges across a fixed number of goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Workers resolves a requested worker count; values <= 0 mean one worker per CPU
func Workers(requested int) int {
	if requested <= 0 {
		return runtime.NumCPU()
	}
	return requested
}

// Chunks returns the number of contiguous chunks For will use for n items
func Chunks(n, workers int) int {
	workers = Workers(workers)
	if n <= 0 {
		return 0
	}
	if workers > n {
		return n
	}
	return workers
}

// For divides [0, n) into contiguous chunks and calls fn(chunk, start, end)
// for each one on its own goroutine, returning once all have finished.
// Chunk numbers run from 0 to Chunks(n, workers)-1 so callers can keep
// per-chunk results in a pre-sized slice.
func For(n, workers int, fn func(chunk, start, end int)) {
	chunks := Chunks(n, workers)
	if chunks == 0 {
		return
	}
	if chunks == 1 {
		fn(0, 0, n)
		return
	}

	perChunk := (n + chunks - 1) / chunks

	var wg sync.WaitGroup
	for c := 0; c < chunks; c++ {
		start := c * perChunk
		end := start + perChunk
		if end > n {
			end = n
		}

		// Skip if this chunk has nothing to process
		if start >= n {
			continue
		}

		wg.Add(1)
		go func(chunk, start, end int) {
			defer wg.Done()
			fn(chunk, start, end)
		}(c, start, end)
	}
	wg.Wait()
}
