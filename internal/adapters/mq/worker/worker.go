// Package worker runs pair enumeration jobs on a pool of goroutines fed by
// the job queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/brokengap/internal/adapters/mq/queue"
	"github.com/okian/brokengap/pkg/logger"
	"github.com/okian/brokengap/pkg/metrics"
)

// Default worker configuration constants.
const (
	queueSlotsPerWorker = 4
)

// Handler processes one job.
type Handler func(ctx context.Context, job queue.Job) error

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until its queue is drained.
type Worker interface {
	// Run processes jobs until the queue closes, a job fails or ctx is done.
	Run(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	handler Handler
	name    string

	processed int

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, h Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:   q,
		handler: h,
		name:    "worker",
		logger:  logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) error {
	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-jobs:
			if !ok {
				if err := ctx.Err(); err != nil {
					return err
				}
				w.logger.Debug(ctx, "queue drained",
					logger.String("worker", w.name),
					logger.Int("processed", w.processed),
				)
				return nil
			}
			if err := w.process(ctx, job); err != nil {
				return err
			}
		}
	}
}

// Processed returns how many jobs the worker has completed.
func (w *InMemoryWorker) Processed() int { return w.processed }

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordJobLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := w.handler(ctx, job); err != nil {
		w.logger.Error(ctx, "job failed",
			logger.String("worker", w.name),
			logger.Int("job", job.Index),
			logger.Error(err),
		)
		return fmt.Errorf("%s: job %d: %w", w.name, job.Index, err)
	}
	w.processed++
	return nil
}

// Pool runs batches of jobs on a fixed number of workers. It implements the
// ranking engine's executor.
type Pool struct {
	workers   int
	queueSize int

	logger logger.Logger
}

// NewPool creates a new worker pool. A workerCount below 1 uses one worker
// per CPU.
func NewPool(workerCount int, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers: workerCount,
		logger:  logger.Get().Named("worker-pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.queueSize < 1 {
		p.queueSize = workerCount * queueSlotsPerWorker
	}
	return p
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int { return p.workers }

// Execute runs jobs [0, jobs) and returns after every worker has stopped.
// The first failing job cancels the rest.
func (p *Pool) Execute(ctx context.Context, jobs int, fn func(ctx context.Context, job int) error) error {
	if jobs <= 0 {
		return nil
	}

	q := queue.NewInMemoryQueue(queue.WithCapacity(p.queueSize))
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer func() { _ = q.Close() }()
		for i := 0; i < jobs; i++ {
			if err := q.Enqueue(gctx, queue.Job{Index: i}); err != nil {
				return err
			}
		}
		return nil
	})

	n := min(p.workers, jobs)
	metrics.UpdateWorkerActiveCount(n)
	defer metrics.UpdateWorkerActiveCount(0)

	handler := func(ctx context.Context, job queue.Job) error { return fn(ctx, job.Index) }
	for i := 0; i < n; i++ {
		w := NewInMemoryWorker(q, handler,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(p.logger),
		)
		g.Go(func() error { return w.Run(gctx) })
	}

	p.logger.Debug(ctx, "executing jobs", logger.Int("jobs", jobs), logger.Int("workers", n))
	return g.Wait()
}
