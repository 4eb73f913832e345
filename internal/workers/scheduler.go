package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	orderApp "github.com/felixgeelhaar/shopcore/internal/orders/application"
	"github.com/felixgeelhaar/shopcore/pkg/observability"
)

// Scheduled job names.
const (
	JobCleanupExpiredOrders = "cleanup_expired_orders"
	JobGenerateDailyReport  = "generate_daily_report"
)

// OrderMaintainer is the order surface the scheduled jobs need.
type OrderMaintainer interface {
	CancelOrder(ctx context.Context, cmd orderApp.CancelOrderCommand) (*orderApp.OrderDTO, error)
	PendingOrdersCreatedBefore(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	OrdersCreatedBetween(ctx context.Context, from, to time.Time) ([]orderApp.OrderDTO, error)
}

// SchedulerConfig configures the periodic jobs.
type SchedulerConfig struct {
	// OrderExpiry is the age after which pending orders are cancelled.
	OrderExpiry     time.Duration
	CleanupInterval time.Duration
	ReportInterval  time.Duration
}

// DefaultSchedulerConfig returns the default job settings.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		OrderExpiry:     7 * 24 * time.Hour,
		CleanupInterval: time.Hour,
		ReportInterval:  24 * time.Hour,
	}
}

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	orders  OrderMaintainer
	cfg     SchedulerConfig
	logger  *slog.Logger
	metrics observability.Metrics
	now     func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(orders OrderMaintainer, cfg SchedulerConfig, logger *slog.Logger, metrics observability.Metrics) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	defaults := DefaultSchedulerConfig()
	if cfg.OrderExpiry <= 0 {
		cfg.OrderExpiry = defaults.OrderExpiry
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = defaults.CleanupInterval
	}
	if cfg.ReportInterval <= 0 {
		cfg.ReportInterval = defaults.ReportInterval
	}
	return &Scheduler{
		orders:  orders,
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Start registers the jobs and runs them until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	jobs := []struct {
		name     string
		interval time.Duration
		run      func(context.Context) error
	}{
		{JobCleanupExpiredOrders, s.cfg.CleanupInterval, func(ctx context.Context) error {
			_, err := s.CleanupExpiredOrders(ctx)
			return err
		}},
		{JobGenerateDailyReport, s.cfg.ReportInterval, func(ctx context.Context) error {
			_, err := s.GenerateDailyReport(ctx)
			return err
		}},
	}

	for _, job := range jobs {
		job := job
		_, err := sched.NewJob(
			gocron.DurationJob(job.interval),
			gocron.NewTask(func() { s.runJob(ctx, job.name, job.run) }),
			gocron.WithName(job.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return fmt.Errorf("failed to schedule %s: %w", job.name, err)
		}
		s.logger.Info("scheduled job", "job", job.name, "interval", job.interval.String())
	}

	sched.Start()
	<-ctx.Done()

	if err := sched.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	s.logger.Info("scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) runJob(ctx context.Context, name string, run func(context.Context) error) {
	ctx = observability.WithCorrelationID(ctx, uuid.NewString())
	ctx = observability.WithOperation(ctx, name)

	status := "success"
	if err := observability.TimeOperation(ctx, s.logger, s.metrics, name, run); err != nil {
		status = "failure"
	}
	s.metrics.Counter(observability.MetricJobRuns, 1,
		observability.T("job", name),
		observability.T(observability.StatusKey, status),
	)
}

// CleanupExpiredOrders cancels pending orders older than the expiry through
// the order service, so events and projections follow. A failed cancellation
// is logged and the remaining orders are still processed.
func (s *Scheduler) CleanupExpiredOrders(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.OrderExpiry)
	ids, err := s.orders.PendingOrdersCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired orders: %w", err)
	}

	cancelled := 0
	for _, id := range ids {
		if _, err := s.orders.CancelOrder(ctx, orderApp.CancelOrderCommand{OrderID: id}); err != nil {
			s.logger.WarnContext(ctx, "failed to cancel expired order",
				"order_id", id,
				observability.ErrorKey, err,
			)
			continue
		}
		cancelled++
	}

	if cancelled > 0 {
		s.metrics.Counter(observability.MetricOrdersExpired, int64(cancelled))
	}
	s.logger.InfoContext(ctx, "expired orders cleaned up",
		"cutoff", cutoff.Format(time.RFC3339),
		"found", len(ids),
		"cancelled", cancelled,
	)
	return cancelled, nil
}

// GenerateDailyReport builds and logs the report of the last 24 hours.
func (s *Scheduler) GenerateDailyReport(ctx context.Context) (DailyReport, error) {
	to := s.now()
	from := to.Add(-24 * time.Hour)

	orders, err := s.orders.OrdersCreatedBetween(ctx, from, to)
	if err != nil {
		return DailyReport{}, fmt.Errorf("failed to load orders for report: %w", err)
	}

	report, err := BuildDailyReport(from, to, orders)
	if err != nil {
		return DailyReport{}, err
	}

	s.logger.InfoContext(ctx, "daily report", report.LogAttrs()...)
	return report, nil
}
