package workers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/shopcore/pkg/observability"
)

// DefaultQueueBuffer is the capacity of the in-process task channel.
const DefaultQueueBuffer = 1024

// InProcessQueue runs tasks on a fixed pool of goroutines.
// Workers start on construction; Close drains the buffered tasks before returning.
type InProcessQueue struct {
	runner  *Runner
	tasks   chan Task
	logger  *slog.Logger
	metrics observability.Metrics

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewInProcessQueue creates a queue with the given number of workers.
func NewInProcessQueue(runner *Runner, workers, buffer int, logger *slog.Logger, metrics observability.Metrics) *InProcessQueue {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if workers < 1 {
		workers = 1
	}
	if buffer < 0 {
		buffer = DefaultQueueBuffer
	}

	q := &InProcessQueue{
		runner:  runner,
		tasks:   make(chan Task, buffer),
		logger:  logger,
		metrics: metrics,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	logger.Info("in-process task queue started", "workers", workers, "buffer", buffer)
	return q
}

func (q *InProcessQueue) work() {
	defer q.wg.Done()
	for task := range q.tasks {
		q.runner.Run(context.Background(), task)
	}
}

// Enqueue hands task to the pool. It blocks while the buffer is full.
func (q *InProcessQueue) Enqueue(ctx context.Context, task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		q.metrics.Counter(observability.MetricTasksEnqueued, 1, observability.T("task", task.Name))
		q.logger.DebugContext(ctx, "task enqueued", "task", task.Name, "task_id", task.ID)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start blocks until ctx is cancelled. The workers already run.
func (q *InProcessQueue) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// Close stops accepting tasks and waits for the queued ones to finish.
func (q *InProcessQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info("in-process task queue drained")
	return nil
}
