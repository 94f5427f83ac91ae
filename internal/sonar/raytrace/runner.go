package raytrace

import (
	"context"
	"runtime"
	"sync"
)

// Outcome is the result of correcting one chunk. Index is the chunk's
// position in the submitted slice; exactly one of Result and Err is set.
type Outcome struct {
	Index  int
	Result *Result
	Err    error
}

// Runner fans chunk correction out over a fixed pool of workers. Chunks
// share no mutable state, so the pool needs no locking beyond the work
// queue itself; outcomes land in per-chunk slots and are returned in
// submission order regardless of completion order.
type Runner struct {
	workers int
}

// NewRunner returns a Runner with the given pool size. Sizes below 1 fall
// back to GOMAXPROCS.
func NewRunner(workers int) *Runner {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{workers: workers}
}

// Run corrects every chunk and returns one outcome per chunk, index-aligned
// with the input. Cancelling the context abandons chunks not yet started;
// a cancelled chunk reports the context error and contributes no partial
// results.
func (r *Runner) Run(ctx context.Context, chunks []Chunk, opts Options) []Outcome {
	out := make([]Outcome, len(chunks))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					out[i] = Outcome{Index: i, Err: err}
					continue
				}
				res, err := CorrectChunk(chunks[i], opts)
				out[i] = Outcome{Index: i, Result: res, Err: err}
			}
		}()
	}

	for i := range chunks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}
