package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/shopcore/pkg/observability"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultTaskQueueName is the durable queue that carries tasks.
const DefaultTaskQueueName = "shop.tasks"

// RabbitMQTaskQueueConfig configures the RabbitMQ task queue.
type RabbitMQTaskQueueConfig struct {
	URL     string
	Queue   string
	Workers int
	Logger  *slog.Logger
	Metrics observability.Metrics
}

// RabbitMQTaskQueue carries tasks through a durable RabbitMQ queue.
// Deliveries are acked once the task has run, whatever its outcome.
type RabbitMQTaskQueue struct {
	conn    *amqp.Connection
	pubCh   *amqp.Channel
	subCh   *amqp.Channel
	queue   string
	workers int
	runner  *Runner
	logger  *slog.Logger
	metrics observability.Metrics

	mu        sync.Mutex
	closed    bool
	closeChan chan struct{}
}

// NewRabbitMQTaskQueue connects and declares the task queue. runner may be nil
// for processes that only enqueue.
func NewRabbitMQTaskQueue(cfg RabbitMQTaskQueueConfig, runner *Runner) (*RabbitMQTaskQueue, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	if cfg.Queue == "" {
		cfg.Queue = DefaultTaskQueueName
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	pubCh, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = pubCh.QueueDeclare(
		cfg.Queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = pubCh.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare task queue: %w", err)
	}

	cfg.Logger.Info("RabbitMQ task queue connected", "queue", cfg.Queue)

	return &RabbitMQTaskQueue{
		conn:      conn,
		pubCh:     pubCh,
		queue:     cfg.Queue,
		workers:   cfg.Workers,
		runner:    runner,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		closeChan: make(chan struct{}),
	}, nil
}

// Enqueue publishes task as a persistent message on the default exchange.
func (q *RabbitMQTaskQueue) Enqueue(ctx context.Context, task Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	err = q.pubCh.PublishWithContext(ctx,
		"",      // default exchange
		q.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     task.ID.String(),
			Type:          task.Name,
			CorrelationId: task.CorrelationID,
			Timestamp:     task.EnqueuedAt,
			Body:          body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish task %s: %w", task.Name, err)
	}

	q.metrics.Counter(observability.MetricTasksEnqueued, 1, observability.T("task", task.Name))
	q.logger.DebugContext(ctx, "task enqueued", "task", task.Name, "task_id", task.ID)
	return nil
}

// Start consumes the task queue with the configured number of workers until
// ctx is cancelled or Close is called.
func (q *RabbitMQTaskQueue) Start(ctx context.Context) error {
	if q.runner == nil {
		return errors.New("task queue has no runner")
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	if q.subCh != nil {
		q.mu.Unlock()
		return errors.New("task queue already consuming")
	}
	ch, err := q.conn.Channel()
	if err != nil {
		q.mu.Unlock()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	q.subCh = ch
	q.mu.Unlock()

	if err := ch.Qos(q.workers, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := ch.Consume(
		q.queue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming %s: %w", q.queue, err)
	}

	q.logger.Info("started consuming tasks", "queue", q.queue, "workers", q.workers)

	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range deliveries {
				q.handle(ctx, d)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		_ = ch.Close()
		<-done
		return ctx.Err()
	case <-q.closeChan:
		<-done
		return nil
	case <-done:
		return errors.New("task deliveries closed unexpectedly")
	}
}

func (q *RabbitMQTaskQueue) handle(ctx context.Context, d amqp.Delivery) {
	var task Task
	if err := json.Unmarshal(d.Body, &task); err != nil || task.Name == "" {
		q.logger.Error("discarding malformed task",
			"message_id", d.MessageId,
			"error", err,
		)
	} else {
		q.runner.Run(ctx, task)
	}

	if err := d.Ack(false); err != nil {
		q.logger.Error("failed to ack task", "task_id", d.MessageId, "error", err)
	}
}

// Close stops consuming and closes the connection.
func (q *RabbitMQTaskQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.closeChan)

	if q.subCh != nil {
		if err := q.subCh.Close(); err != nil {
			q.logger.Warn("error closing consumer channel", "error", err)
		}
	}
	if err := q.pubCh.Close(); err != nil {
		q.logger.Warn("error closing publisher channel", "error", err)
	}
	if err := q.conn.Close(); err != nil {
		return err
	}

	q.logger.Info("RabbitMQ task queue closed")
	return nil
}
