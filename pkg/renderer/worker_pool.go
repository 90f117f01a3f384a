package renderer

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// WorkerPool renders a Raytracer's buffer in parallel. Worker t of n owns
// the rows j with j % n == t, so no two workers write the same pixel.
type WorkerPool struct {
	raytracer  *Raytracer
	numWorkers int
	seed       int64
	stopped    atomic.Bool
}

// NewWorkerPool creates a worker pool with the specified number of workers
func NewWorkerPool(raytracer *Raytracer, numWorkers int, seed int64) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{
		raytracer:  raytracer,
		numWorkers: numWorkers,
		seed:       seed,
	}
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// Stop asks running workers to finish their current pixel and return. The
// pool stays stopped: a later Render returns at once with no pixels traced.
func (wp *WorkerPool) Stop() {
	wp.stopped.Store(true)
}

// Render traces every pixel and blocks until all workers are done. The stop
// flag and ctx are checked before each pixel; an interrupted render returns
// the partial stats together with context.Canceled or ctx's error.
func (wp *WorkerPool) Render(ctx context.Context) (RenderStats, error) {
	start := time.Now()
	startSamples := wp.raytracer.Samples()

	var (
		wg     sync.WaitGroup
		pixels atomic.Int64
	)

	for t := 0; t < wp.numWorkers; t++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			random := rand.New(rand.NewSource(wp.seed + int64(worker)))
			pixels.Add(int64(wp.renderRows(ctx, worker, random)))
		}(t)
	}
	wg.Wait()

	stats := RenderStats{
		Width:        wp.raytracer.Width(),
		Height:       wp.raytracer.Height(),
		TotalPixels:  int(pixels.Load()),
		TotalSamples: wp.raytracer.Samples() - startSamples,
		Workers:      wp.numWorkers,
		Elapsed:      time.Since(start),
	}

	if err := ctx.Err(); err != nil {
		stats.Canceled = true
		return stats, err
	}
	if wp.stopped.Load() {
		stats.Canceled = stats.Completion() < 1
		if stats.Canceled {
			return stats, context.Canceled
		}
	}
	return stats, nil
}

// renderRows renders worker's rows and returns the number of pixels done
func (wp *WorkerPool) renderRows(ctx context.Context, worker int, random *rand.Rand) int {
	width, height := wp.raytracer.Width(), wp.raytracer.Height()
	done := 0
	for j := worker; j < height; j += wp.numWorkers {
		for i := 0; i < width; i++ {
			if wp.stopped.Load() || ctx.Err() != nil {
				return done
			}
			wp.raytracer.TracePixel(i, j, random)
			done++
		}
	}
	return done
}
