// Package worker runs the per-file tasks of a batch over a fixed-size pool
// of goroutines. Files are independent, so the pool imposes no ordering
// beyond the results slice mirroring the inputs slice.
package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Result pairs one input with whatever its task produced.
type Result[T any, R any] struct {
	Input T
	Value R
	Err   error
}

// TaskFunc processes a single input.
type TaskFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool is a generic worker pool with configurable concurrency.
type Pool[T any, R any] struct {
	workers int
	task    TaskFunc[T, R]
}

// NewPool creates a pool of at least one worker.
func NewPool[T any, R any](workers int, fn TaskFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		task:    fn,
	}
}

// Execute runs all inputs through the pool. results[i] corresponds to
// inputs[i]; inputs not reached before a cancellation keep the zero Result.
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Result[T, R] {
	results := make([]Result[T, R], len(inputs))
	inputCh := make(chan int, len(inputs))

	var wg sync.WaitGroup

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-inputCh:
					if !ok {
						return
					}
					value, err := p.task(ctx, inputs[idx])
					results[idx] = Result[T, R]{
						Input: inputs[idx],
						Value: value,
						Err:   err,
					}
					if err != nil {
						log.Error().Err(err).Int("worker", workerID).Int("index", idx).Msg("Task failed")
					}
				}
			}
		}(w)
	}

send:
	for i := range inputs {
		select {
		case <-ctx.Done():
			break send
		case inputCh <- i:
		}
	}
	close(inputCh)

	wg.Wait()
	return results
}
