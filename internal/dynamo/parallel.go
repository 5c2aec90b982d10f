package dynamo

import (
	"math"
	"runtime"
	"sync"
)

// MinChunk is the smallest index range worth handing to its own goroutine.
const MinChunk = 64

// ParallelFor executes a function in parallel over a range [0, n)
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	numWorkers := runtime.GOMAXPROCS(0)
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || numWorkers <= 1 {
		fn(0, n)
		return
	}

	workers := numWorkers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// Each runs fn for every index in [0, n) using ParallelFor with the default chunk size.
func Each(n int, fn func(i int)) {
	ParallelFor(n, MinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			fn(i)
		}
	})
}

// MaxReduce returns the maximum of fn(i) over [0, n), or -Inf for n == 0.
// A NaN from any index is propagated.
func MaxReduce(n int, fn func(i int) float64) float64 {
	var (
		mu     sync.Mutex
		result = math.Inf(-1)
	)

	ParallelFor(n, MinChunk, func(start, end int) {
		local := math.Inf(-1)
		for i := start; i < end; i++ {
			v := fn(i)
			if math.IsNaN(v) || v > local {
				local = v
				if math.IsNaN(v) {
					break
				}
			}
		}

		mu.Lock()
		if math.IsNaN(local) || local > result {
			if !math.IsNaN(result) {
				result = local
			}
		}
		mu.Unlock()
	})

	return result
}
