package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/shopcore/internal/workers"
	"github.com/felixgeelhaar/shopcore/pkg/config"
)

// Worker is the background side of the shop: the event consumer feeding the
// task queue, the scheduled jobs and, when enabled, the outbox relay.
type Worker struct {
	Consumer  eventbus.Consumer
	Queue     workers.TaskQueue
	Runner    *workers.Runner
	Scheduler *workers.Scheduler
	Outbox    *outbox.Processor

	outboxRepo      outbox.Repository
	ownsConsumer    bool
	retentionDays   int
	cleanupInterval time.Duration
	statsInterval   time.Duration
	logger          *slog.Logger
}

// NewWorker wires the worker on top of the container's services.
func (c *Container) NewWorker() (*Worker, error) {
	cfg := c.Config

	runner := workers.NewRunner(c.Logger, c.Metrics)
	sender := workers.NewBreakerSender(
		workers.NewSender(workers.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
		}, c.Logger),
		workers.DefaultBreakerConfig(),
		c.Logger,
	)
	workers.NewTasks(c.Users, c.Orders, sender, workers.NewSimulatedGateway(c.Logger), c.Logger).Register(runner)

	queue, err := c.newTaskQueue(runner)
	if err != nil {
		return nil, err
	}

	consumer, err := c.newConsumer()
	if err != nil {
		_ = queue.Close()
		return nil, fmt.Errorf("failed to create event consumer: %w", err)
	}
	consumer.RegisterConsumer(workers.NewDispatcher(queue, c.Logger, c.Metrics))

	w := &Worker{
		Consumer: consumer,
		Queue:    queue,
		Runner:   runner,
		Scheduler: workers.NewScheduler(c.Orders, workers.SchedulerConfig{
			OrderExpiry:     cfg.OrderExpiry,
			CleanupInterval: cfg.CleanupInterval,
			ReportInterval:  cfg.ReportInterval,
		}, c.Logger, c.Metrics),
		ownsConsumer:    c.Bus == nil,
		retentionDays:   cfg.OutboxRetentionDays,
		cleanupInterval: cfg.OutboxCleanupInterval,
		statsInterval:   cfg.OutboxStatsInterval,
		logger:          c.Logger,
	}

	if c.OutboxRepo != nil {
		processorCfg := outbox.DefaultProcessorConfig()
		if cfg.OutboxPollInterval > 0 {
			processorCfg.PollInterval = cfg.OutboxPollInterval
		}
		if cfg.OutboxBatchSize > 0 {
			processorCfg.BatchSize = cfg.OutboxBatchSize
		}
		if cfg.OutboxMaxRetries > 0 {
			processorCfg.MaxRetries = cfg.OutboxMaxRetries
		}
		w.outboxRepo = c.OutboxRepo
		w.Outbox = outbox.NewProcessor(c.OutboxRepo, c.Publisher, processorCfg, c.Logger).WithMetrics(c.Metrics)
	}

	return w, nil
}

func (c *Container) newTaskQueue(runner *workers.Runner) (workers.TaskQueue, error) {
	switch c.Config.TaskQueue {
	case config.TaskQueueRabbitMQ:
		return workers.NewRabbitMQTaskQueue(workers.RabbitMQTaskQueueConfig{
			URL:     c.Config.RabbitMQURL,
			Workers: c.Config.TaskWorkers,
			Logger:  c.Logger,
			Metrics: c.Metrics,
		}, runner)
	case config.TaskQueueInProcess, "":
		return workers.NewInProcessQueue(runner, c.Config.TaskWorkers, workers.DefaultQueueBuffer, c.Logger, c.Metrics), nil
	default:
		return nil, fmt.Errorf("unsupported task queue: %q", c.Config.TaskQueue)
	}
}

// Run starts every worker component and blocks until ctx is cancelled or one
// of them fails.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return ignoreCancel(w.Consumer.Start(ctx)) })
	g.Go(func() error { return ignoreCancel(w.Queue.Start(ctx)) })
	g.Go(func() error { return ignoreCancel(w.Scheduler.Start(ctx)) })

	if w.Outbox != nil {
		g.Go(func() error {
			if err := w.Outbox.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			w.Outbox.Stop()
			return nil
		})
		g.Go(func() error { return w.runOutboxCleanup(ctx) })
		g.Go(func() error { return w.runOutboxStats(ctx) })
	}

	w.logger.Info("worker running", "outbox", w.Outbox != nil)
	return g.Wait()
}

// runOutboxCleanup deletes published outbox rows past their retention.
func (w *Worker) runOutboxCleanup(ctx context.Context) error {
	if w.cleanupInterval <= 0 || w.retentionDays <= 0 {
		return nil
	}

	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			deleted, err := w.outboxRepo.DeleteOld(ctx, w.retentionDays)
			if err != nil {
				w.logger.Error("outbox cleanup failed", "error", err)
				continue
			}
			w.logger.Info("outbox cleanup", "deleted", deleted)
		}
	}
}

// runOutboxStats periodically logs the relay counters.
func (w *Worker) runOutboxStats(ctx context.Context) error {
	if w.statsInterval <= 0 {
		return nil
	}

	ticker := time.NewTicker(w.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := w.Outbox.GetStats()
			w.logger.Info("outbox stats",
				"running", stats.IsRunning,
				"published", stats.PublishedCount,
				"failed", stats.FailedCount,
				"dead", stats.DeadCount,
				"lag_seconds", stats.LagSeconds,
				"last_processed_at", stats.LastProcessedAt,
				"last_error", stats.LastError,
			)
		}
	}
}

// Close stops consuming and drains the task queue.
func (w *Worker) Close() error {
	var errs []error
	if w.ownsConsumer {
		if err := w.Consumer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close consumer: %w", err))
		}
	}
	if w.Outbox != nil {
		w.Outbox.Stop()
	}
	if err := w.Queue.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close task queue: %w", err))
	}
	return errors.Join(errs...)
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
