package queuepoller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/storacha/resume-converter/internal/jobqueue"
	"github.com/storacha/resume-converter/pkg/telemetry"
)

const (
	defaultJobBatchSize = 10
	defaultConcurrency  = 4
	defaultJobTimeout   = 5 * time.Minute

	maxJobBatchSize = 10
	readErrorDelay  = time.Second
)

type (
	QueueReader[Job any] interface {
		Read(ctx context.Context, maxJobs int) ([]Job, error)
	}

	QueueReleaser interface {
		Release(ctx context.Context, jobID string) error
	}

	QueueDeleter interface {
		Delete(ctx context.Context, jobID string) error
	}

	Queue[Job any] interface {
		QueueReader[Job]
		QueueReleaser
		QueueDeleter
	}
)

var log = telemetry.NewSentryLogger("queuepoller")

type config struct {
	jobBatchSize int
	concurrency  int
	jobTimeout   time.Duration
}

// Option configures the QueuePoller
type Option func(*config)

// WithJobBatchSize sets the maximum number of jobs to read from the queue at once
func WithJobBatchSize(size int) Option {
	return func(cfg *config) {
		cfg.jobBatchSize = size
	}
}

// WithConcurrency sets the maximum number of jobs processed at the same time
func WithConcurrency(concurrency int) Option {
	return func(cfg *config) {
		cfg.concurrency = concurrency
	}
}

// WithJobTimeout sets how long a single job may run before its context is
// cancelled
func WithJobTimeout(timeout time.Duration) Option {
	return func(cfg *config) {
		cfg.jobTimeout = timeout
	}
}

type JobHandler[Job any] interface {
	Handle(ctx context.Context, job Job) error
}

type JobIdentifier[Job any] interface {
	ID(job Job) string
}

// QueuePoller polls a queue for jobs and processes them using the provided
// JobHandler. Jobs that fail are released back to the queue, jobs that succeed
// or time out are deleted.
type QueuePoller[Job any] struct {
	queue        Queue[Job]
	jq           *jobqueue.JobQueue[Job]
	jobBatchSize int
	ctx          context.Context
	cancel       context.CancelFunc
	stopped      chan struct{}
	startOnce    sync.Once
	stopOnce     sync.Once
}

// NewQueuePoller creates a new QueuePoller instance.
func NewQueuePoller[Job any](queue Queue[Job], handler JobHandler[Job], identifier JobIdentifier[Job], opts ...Option) (*QueuePoller[Job], error) {
	cfg := &config{
		jobBatchSize: defaultJobBatchSize,
		concurrency:  defaultConcurrency,
		jobTimeout:   defaultJobTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.jobBatchSize < 1 || cfg.jobBatchSize > maxJobBatchSize {
		return nil, fmt.Errorf("job batch size %d must be between 1 and %d", cfg.jobBatchSize, maxJobBatchSize)
	}

	jq := jobqueue.NewJobQueue(
		jobHandler(queue, handler, identifier),
		jobqueue.WithConcurrency(cfg.concurrency),
		jobqueue.WithJobTimeout(cfg.jobTimeout),
		jobqueue.WithErrorHandler(func(err error) {
			log.Errorf("Error processing queued job: %s", err)
		}))

	ctx, cancel := context.WithCancel(context.Background())
	return &QueuePoller[Job]{
		queue:        queue,
		jq:           jq,
		jobBatchSize: cfg.jobBatchSize,
		ctx:          ctx,
		cancel:       cancel,
		stopped:      make(chan struct{}),
	}, nil
}

// Start begins polling the queue in the background. Start after Stop is a
// no-op.
func (p *QueuePoller[Job]) Start() {
	p.startOnce.Do(func() {
		p.jq.Startup()
		log.Infof("Starting queue poller")

		go func() {
			defer close(p.stopped)
			for {
				select {
				case <-p.ctx.Done():
					log.Infof("Stopping polling loop")
					return
				default:
					p.processJobs(p.ctx)
				}
			}
		}()
	})
}

// Stop stops the polling loop and waits for in flight jobs to finish, or for
// ctx to cancel. It is safe to call from a different goroutine than Start.
func (p *QueuePoller[Job]) Stop(ctx context.Context) error {
	var err error
	p.stopOnce.Do(func() {
		p.cancel()
		// a poller that never started has no loop to close stopped
		p.startOnce.Do(func() { close(p.stopped) })
		<-p.stopped
		err = p.jq.Shutdown(ctx)
	})
	return err
}

// processJobs reads one batch of jobs and hands them to the workers
func (p *QueuePoller[Job]) processJobs(ctx context.Context) {
	jobs, err := p.queue.Read(ctx, p.jobBatchSize)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Errorf("Error reading jobs from queue: %v", err)
		select {
		case <-ctx.Done():
		case <-time.After(readErrorDelay):
		}
		return
	}

	for _, job := range jobs {
		if err := p.jq.Queue(ctx, job); err != nil {
			log.Errorf("Error queuing job: %v", err)
		}
	}
}

func jobHandler[Job any](queue Queue[Job], handler JobHandler[Job], identifier JobIdentifier[Job]) jobqueue.Handler[Job] {
	return func(ctx context.Context, job Job) error {
		id := identifier.ID(job)
		err := handler.Handle(ctx, job)
		// a conversion that times out once will time out again, so it is not
		// released for a retry
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			// the job context may already be done, queue bookkeeping gets a fresh one
			if err := queue.Release(context.WithoutCancel(ctx), id); err != nil {
				log.Warnf("Failed to release job %s: %s", id, err)
			}
			return fmt.Errorf("failed to perform job %s: %w", id, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warnf("Not retrying job %s: %s", id, err)
		}
		if err := queue.Delete(context.WithoutCancel(ctx), id); err != nil {
			return fmt.Errorf("failed to delete job %s: %w", id, err)
		}
		return nil
	}
}
