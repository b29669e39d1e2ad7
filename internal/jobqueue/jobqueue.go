package jobqueue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrQueueShutdown means the queue is shutdown so the job could not be queued
var ErrQueueShutdown = errors.New("queue is shutdown")

type (
	// Option modifies the config of a JobQueue
	Option func(*config)

	// Handler handles jobs of the given type
	Handler[Job any] func(ctx context.Context, j Job) error

	// JobQueue hands jobs to a fixed set of workers. Queue blocks until a worker
	// takes the job, so no job is ever accepted and then dropped on shutdown.
	JobQueue[Job any] struct {
		*config
		handler   Handler[Job]
		jobs      chan Job
		closing   chan struct{}
		closeOnce sync.Once
		ctx       context.Context
		cancel    context.CancelFunc
		wg        sync.WaitGroup
	}

	config struct {
		jobTimeout   time.Duration
		errorHandler func(error)
		concurrency  int
	}
)

// WithConcurrency sets the number of workers that will process jobs in
// parallel
func WithConcurrency(concurrency int) Option {
	return func(c *config) {
		c.concurrency = concurrency
	}
}

// WithErrorHandler uses the given error handler whenever a job errors while processing
func WithErrorHandler(errorHandler func(error)) Option {
	return func(c *config) {
		c.errorHandler = errorHandler
	}
}

// WithJobTimeout cancels the context passed to the job handler after the
// specified timeout
func WithJobTimeout(jobTimeout time.Duration) Option {
	return func(c *config) {
		c.jobTimeout = jobTimeout
	}
}

// NewJobQueue returns a new job queue that processes with the given handler
func NewJobQueue[Job any](handler Handler[Job], opts ...Option) *JobQueue[Job] {
	c := &config{
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.concurrency < 1 {
		c.concurrency = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &JobQueue[Job]{
		config:  c,
		handler: handler,
		jobs:    make(chan Job),
		closing: make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Queue waits for a worker to take the job. It fails if the queue is shutdown,
// or the passed context cancels first.
func (q *JobQueue[Job]) Queue(ctx context.Context, j Job) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closing:
		return ErrQueueShutdown
	case q.jobs <- j:
		return nil
	}
}

// Startup starts the workers in the background (returns immediately)
func (q *JobQueue[Job]) Startup() {
	for range q.concurrency {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.worker()
		}()
	}
}

// Shutdown stops accepting jobs and waits for running jobs to finish. If the
// passed context cancels first, running jobs have their contexts cancelled and
// the context error is returned.
func (q *JobQueue[Job]) Shutdown(ctx context.Context) error {
	q.closeOnce.Do(func() { close(q.closing) })
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		return ctx.Err()
	}
}

func (q *JobQueue[Job]) worker() {
	for {
		select {
		case <-q.closing:
			return
		case j := <-q.jobs:
			q.handleJob(j)
		}
	}
}

func (q *JobQueue[Job]) jobCtx() (context.Context, context.CancelFunc) {
	if q.jobTimeout != 0 {
		return context.WithTimeout(q.ctx, q.jobTimeout)
	}
	return context.WithCancel(q.ctx)
}

func (q *JobQueue[Job]) handleJob(j Job) {
	ctx, cancel := q.jobCtx()
	defer cancel()
	err := q.handler(ctx, j)
	if err != nil && q.errorHandler != nil {
		q.errorHandler(err)
	}
}
