package grid

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum iteration count to fan out to goroutines.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// ParallelFor executes fn for each i in [0,n). The range is split into
// contiguous chunks among available CPUs; iterations must write disjoint data.
func ParallelFor(n int, fn func(i int)) {
	ParallelChunks(n, func(start, end int) {
		for i := start; i < end; i++ {
			fn(i)
		}
	})
}

// ParallelChunks calls fn once per contiguous chunk of [0,n).
func ParallelChunks(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if n < parallelThreshold || workers < 2 {
		fn(0, n)
		return
	}
	if workers > n {
		workers = n
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelCells executes fn for every cell (i,j,k) of a grid of the given
// extents, parallelised over z-slices (or rows for 2-D grids).
func ParallelCells(sx, sy, sz int, fn func(i, j, k int)) {
	if sz > 1 {
		ParallelFor(sz, func(k int) {
			for j := 0; j < sy; j++ {
				for i := 0; i < sx; i++ {
					fn(i, j, k)
				}
			}
		})
		return
	}
	ParallelFor(sy, func(j int) {
		for i := 0; i < sx; i++ {
			fn(i, j, 0)
		}
	})
}
