package worker

import (
	"context"
	"sync"
)

// Job is a unit of work that produces a value
type Job[T any] func(ctx context.Context) (T, error)

// Result is the outcome of the job at Index in the submitted slice
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Pool bounds how many jobs run at once
type Pool struct {
	workers int
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Workers returns the pool size
func (p *Pool) Workers() int {
	return p.workers
}

// Run executes jobs on the pool and returns one result per job, in job
// order. Jobs not yet started when ctx is cancelled report ctx.Err().
func Run[T any](ctx context.Context, p *Pool, jobs []Job[T]) []Result[T] {
	results := make([]Result[T], len(jobs))
	if len(jobs) == 0 {
		return results
	}

	workers := p.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	queue := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				// each index is written by exactly one worker
				results[i] = execute(ctx, i, jobs[i])
			}
		}()
	}

	next := 0
feed:
	for ; next < len(jobs); next++ {
		select {
		case <-ctx.Done():
			break feed
		case queue <- next:
		}
	}
	close(queue)
	wg.Wait()

	for i := next; i < len(jobs); i++ {
		results[i] = Result[T]{Index: i, Err: ctx.Err()}
	}
	return results
}

func execute[T any](ctx context.Context, i int, job Job[T]) Result[T] {
	if err := ctx.Err(); err != nil {
		return Result[T]{Index: i, Err: err}
	}
	v, err := job(ctx)
	return Result[T]{Index: i, Value: v, Err: err}
}
