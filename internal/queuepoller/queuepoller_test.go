package queuepoller_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/storacha/resume-converter/internal/queuepoller"
	"github.com/stretchr/testify/require"
)

type job struct {
	id      string
	outcome error
}

type memoryQueue struct {
	mu       sync.Mutex
	pending  []job
	released []string
	deleted  []string
}

func (q *memoryQueue) Read(ctx context.Context, maxJobs int) ([]job, error) {
	q.mu.Lock()
	n := min(maxJobs, len(q.pending))
	jobs := q.pending[:n]
	q.pending = q.pending[n:]
	q.mu.Unlock()
	if n == 0 {
		// stand in for a long poll
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
	return jobs, nil
}

func (q *memoryQueue) Release(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.released = append(q.released, id)
	return nil
}

func (q *memoryQueue) Delete(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deleted = append(q.deleted, id)
	return nil
}

func (q *memoryQueue) handled() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.released) + len(q.deleted)
}

type handler struct{}

func (handler) Handle(ctx context.Context, j job) error { return j.outcome }

type identifier struct{}

func (identifier) ID(j job) string { return j.id }

func TestQueuePoller(t *testing.T) {
	queue := &memoryQueue{
		pending: []job{
			{id: "ok-1"},
			{id: "fail", outcome: errors.New("upload failed")},
			{id: "timeout", outcome: context.DeadlineExceeded},
			{id: "ok-2"},
		},
	}

	poller, err := queuepoller.NewQueuePoller(queue, handler{}, identifier{}, queuepoller.WithJobBatchSize(3), queuepoller.WithConcurrency(2))
	require.NoError(t, err)

	poller.Start()
	require.Eventually(t, func() bool { return queue.handled() == 4 }, time.Second, 5*time.Millisecond)
	require.NoError(t, poller.Stop(t.Context()))

	require.Equal(t, []string{"fail"}, queue.released)
	require.ElementsMatch(t, []string{"ok-1", "timeout", "ok-2"}, queue.deleted)
}

func TestQueuePoller__BatchSize(t *testing.T) {
	for _, size := range []int{0, 11} {
		_, err := queuepoller.NewQueuePoller[job](&memoryQueue{}, handler{}, identifier{}, queuepoller.WithJobBatchSize(size))
		require.Error(t, err)
	}
}

func TestQueuePoller__StopBeforeStart(t *testing.T) {
	poller, err := queuepoller.NewQueuePoller[job](&memoryQueue{}, handler{}, identifier{})
	require.NoError(t, err)
	require.NoError(t, poller.Stop(t.Context()))
}

func TestQueuePoller__ConcurrentStartStop(t *testing.T) {
	for range 20 {
		queue := &memoryQueue{pending: []job{{id: "ok-1"}}}
		poller, err := queuepoller.NewQueuePoller(queue, handler{}, identifier{})
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			poller.Start()
		}()
		go func() {
			defer wg.Done()
			require.NoError(t, poller.Stop(t.Context()))
		}()
		wg.Wait()

		// starting again after stop never restarts the loop
		poller.Start()
		require.NoError(t, poller.Stop(t.Context()))
	}
}
