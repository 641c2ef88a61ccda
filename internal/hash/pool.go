package hash

import (
	"context"
	"log"
	"runtime"
	"sort"
	"sync"

	"dupesweep/internal/dedupe"
	"dupesweep/internal/limiter"
)

// Pool hashes files across a bounded set of workers. Each hash computation
// is independent; the only shared state is the results collector. Completed
// records are re-sorted by enumeration index before they are returned, so
// grouping and survivor selection never depend on completion order.
type Pool struct {
	workers  int
	throttle *limiter.CPULimiter
	logger   *log.Logger
}

func NewPool(workers int, throttle *limiter.CPULimiter, logger *log.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pool{workers: workers, throttle: throttle, logger: logger}
}

// Run computes the full digest for every record. Per-file read failures are
// soft: the record is dropped from the output and counted. Cancellation
// stops feeding workers; hashing is read-only, so an abandoned run has no
// side effects.
func (p *Pool) Run(ctx context.Context, records []dedupe.FileRecord) (hashed []dedupe.FileRecord, failures int64) {
	if len(records) == 0 {
		return nil, 0
	}

	jobs := make(chan dedupe.FileRecord, len(records))
	type result struct {
		rec dedupe.FileRecord
		err error
	}
	results := make(chan result, len(records))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				if p.throttle != nil {
					p.throttle.Throttle()
				}
				d, err := Sum(rec.Path)
				rec.Digest = d
				results <- result{rec: rec, err: err}
			}
		}()
	}

feed:
	for _, rec := range records {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- rec:
		}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if res.err != nil {
			p.logger.Printf("WARN: hash failed for %s: %v", res.rec.Path, res.err)
			failures++
			continue
		}
		hashed = append(hashed, res.rec)
	}

	// Restore enumeration order so the first-seen policy sees the same
	// sequence a sequential run would.
	sort.Slice(hashed, func(i, j int) bool {
		return hashed[i].Index < hashed[j].Index
	})

	return hashed, failures
}
