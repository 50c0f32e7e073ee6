// Package parallel splits independent per-plane work across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled    bool // Whether parallel execution is enabled.
	NumWorkers int  // Upper bound on goroutines per call.
	MinWork    int  // Minimum work units per goroutine.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
		MinWork:    16 * 1024,
	}
}

// Chunks returns how many goroutines For would use for n items of
// unitWork work units each.
func (cfg Config) Chunks(n, unitWork int) int {
	if !cfg.Enabled || n <= 1 || cfg.NumWorkers <= 1 {
		return 1
	}
	unitWork = max(unitWork, 1)
	byWork := max(n*unitWork/max(cfg.MinWork, 1), 1)
	return min(n, cfg.NumWorkers, byWork)
}

// For calls f(i) for every i in [0, n). Items are split into contiguous
// chunks so that each goroutine gets at least MinWork units; small inputs
// run on the calling goroutine.
func For(n, unitWork int, f func(i int), cfg Config) {
	chunks := cfg.Chunks(n, unitWork)
	if chunks == 1 {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	size := (n + chunks - 1) / chunks
	var wg sync.WaitGroup
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		wg.Go(func() {
			for i := start; i < end; i++ {
				f(i)
			}
		})
	}
	wg.Wait()
}
