package concurrent

import (
	"context"
	"sync"
)

type JobFunc[T any, G any] func(ctx context.Context, job T) G

// Job pairs a payload with its submission position so results can be reordered.
type Job[T any] struct {
	ID      int
	Payload T
}

type Result[G any] struct {
	ID    int
	Value G
}

// WorkerPool runs a fixed number of goroutines over a buffered job queue.
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan Job[T]
	results    chan Result[G]
	wg         sync.WaitGroup
}

func NewWorkerPool[T any, G any](numWorkers, jobQueueSize int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job[T], jobQueueSize),
		results:    make(chan Result[G], jobQueueSize),
	}
}

func (wp *WorkerPool[T, G]) worker(ctx context.Context, jobFunc JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- Result[G]{ID: job.ID, Value: jobFunc(ctx, job.Payload)}
	}
}

func (wp *WorkerPool[T, G]) Start(ctx context.Context, jobFunc JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, jobFunc)
	}
}

// Wait blocks until every worker exits, then closes the results channel.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) AddJob(job Job[T]) {
	wp.jobQueue <- job
}

func (wp *WorkerPool[T, G]) CollectResults() chan Result[G] {
	return wp.results
}

func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

// Run processes payloads and returns their results in submission order.
func Run[T any, G any](ctx context.Context, numWorkers int, payloads []T, jobFunc JobFunc[T, G]) []G {
	wp := NewWorkerPool[T, G](numWorkers, len(payloads))
	wp.Start(ctx, jobFunc)

	for i, p := range payloads {
		wp.AddJob(Job[T]{ID: i, Payload: p})
	}
	wp.Close()
	wp.Wait()

	out := make([]G, len(payloads))
	for res := range wp.CollectResults() {
		out[res.ID] = res.Value
	}
	return out
}
