package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// ExchangeName is the topic exchange for domain events. Event types are the routing keys.
	ExchangeName = "shop.domain.events"
)

// RabbitMQPublisher publishes events to RabbitMQ.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewRabbitMQPublisher creates a new RabbitMQ publisher.
func NewRabbitMQPublisher(url string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close() // Best-effort cleanup
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare the topic exchange
	err = ch.ExchangeDeclare(
		ExchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = ch.Close()   // Best-effort cleanup
		_ = conn.Close() // Best-effort cleanup
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Info("RabbitMQ publisher connected",
		"exchange", ExchangeName,
	)

	return &RabbitMQPublisher{
		conn:     conn,
		channel:  ch,
		exchange: ExchangeName,
		logger:   logger,
	}, nil
}

// Publish sends a persistent message to the exchange, routed by event type.
func (p *RabbitMQPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.channel.PublishWithContext(ctx,
		p.exchange, // exchange
		eventType,  // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Type:         eventType,
			Body:         payload,
		},
	)

	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish message",
			"event_type", eventType,
			"error", err,
		)
		return err
	}

	p.logger.DebugContext(ctx, "message published",
		"event_type", eventType,
		"size", len(payload),
	)

	return nil
}

// Delivery reports durable delivery: messages are persistent on a durable exchange.
func (p *RabbitMQPublisher) Delivery() Delivery {
	return DeliveryDurable
}

// Ping reports whether the broker connection is still open.
func (p *RabbitMQPublisher) Ping(ctx context.Context) error {
	if p.conn == nil || p.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}
	return nil
}

// Close closes the publisher connection.
func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Warn("error closing channel", "error", err)
		}
	}

	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return err
		}
	}

	p.logger.Info("RabbitMQ publisher closed")
	return nil
}

// NoopPublisher drops every event. It backs EVENT_BUS=none.
type NoopPublisher struct {
	logger *slog.Logger
}

// NewNoopPublisher creates a publisher that does nothing.
func NewNoopPublisher(logger *slog.Logger) *NoopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopPublisher{logger: logger}
}

// Publish logs the message but doesn't actually publish.
func (p *NoopPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	p.logger.DebugContext(ctx, "noop publish",
		"event_type", eventType,
		"size", len(payload),
	)
	return nil
}

// Delivery reports at-most-once.
func (p *NoopPublisher) Delivery() Delivery {
	return DeliveryAtMostOnce
}

// Close is a no-op.
func (p *NoopPublisher) Close() error {
	return nil
}
