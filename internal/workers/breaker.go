package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrSenderUnavailable is returned while the email circuit is open.
var ErrSenderUnavailable = errors.New("email sender unavailable")

// BreakerConfig configures the email circuit breaker.
type BreakerConfig struct {
	// MaxRequests is the number of trial sends allowed while half-open.
	MaxRequests uint32
	// Interval resets the failure counts while closed.
	Interval time.Duration
	// Timeout is how long the circuit stays open.
	Timeout time.Duration
	// FailureThreshold trips the circuit after this many consecutive failures.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns the default breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerSender guards a Sender with a circuit breaker so an unreachable mail
// server fails tasks fast instead of holding workers on dial timeouts.
type BreakerSender struct {
	next    Sender
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerSender wraps next.
func NewBreakerSender(next Sender, cfg BreakerConfig, logger *slog.Logger) *BreakerSender {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        "email",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &BreakerSender{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

// Send delivers email through the breaker.
func (s *BreakerSender) Send(ctx context.Context, email Email) error {
	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.next.Send(ctx, email)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrSenderUnavailable, err)
	}
	return err
}

// State reports the breaker state.
func (s *BreakerSender) State() gobreaker.State {
	return s.breaker.State()
}
