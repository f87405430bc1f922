package render

import (
	"context"
	"sync"
)

// Batch renders several requests concurrently. Each request gets its own
// Renderer and surface, so results never share pixels.
type Batch struct {
	base    *Renderer
	workers int
}

func NewBatch(r *Renderer, workers int) *Batch {
	if workers < 1 {
		workers = 1
	}
	return &Batch{base: r, workers: workers}
}

// Run renders every request and returns results and errors index-aligned
// with reqs. Requests not started before ctx is done fail with ctx.Err().
func (b *Batch) Run(ctx context.Context, reqs []Request) ([]*Result, []error) {
	results := make([]*Result, len(reqs))
	errs := make([]error, len(reqs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(b.workers, len(reqs)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := New(b.base.catalog, b.base.provider, WithLogger(b.base.logger))
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					errs[idx] = err
					continue
				}
				results[idx], errs[idx] = r.Render(reqs[idx])
			}
		}()
	}

	for i := range reqs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results, errs
}
