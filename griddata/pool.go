package griddata

import (
	"context"
	"log"
	"runtime"
	"sync"
)

// ExecOptions controls how a computation is spread over goroutines.
type ExecOptions struct {
	// Workers is the number of goroutines. If 0, defaults to
	// runtime.NumCPU().
	Workers int

	// Progress is an optional callback invoked after each point with the
	// number of points done so far.
	Progress func(done, total int)

	// Logger receives a summary line when set.
	Logger *log.Logger
}

// DefaultExecOptions uses one worker per CPU.
func DefaultExecOptions() ExecOptions {
	return ExecOptions{Workers: runtime.NumCPU()}
}

// parallel calls fn for every index in [0, n) on a pool of workers and
// collects the results in order. The first error stops the dispatch of
// further points and is returned.
func parallel[T any](ctx context.Context, n int, opts ExecOptions, fn func(i int) (T, error)) ([]T, error) {
	result := make([]T, n)
	if n == 0 {
		return result, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type pointResult struct {
		index int
		value T
		err   error
	}

	jobs := make(chan int)
	results := make(chan pointResult, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				v, err := fn(i)
				results <- pointResult{index: i, value: v, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	done := 0
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				cancel()
			}
			continue
		}
		result[r.index] = r.value
		done++
		if opts.Progress != nil {
			opts.Progress(done, n)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if done < n {
		return nil, ctx.Err()
	}
	return result, nil
}
