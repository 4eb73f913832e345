package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// DefaultQueuePrefix prefixes the durable queue declared for each event type.
	DefaultQueuePrefix = "shop.events"
)

// RabbitMQConsumer consumes events from RabbitMQ with one durable queue per event type.
type RabbitMQConsumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	queuePrefix string
	exchange    string
	registry    *ConsumerRegistry
	logger      *slog.Logger
	mu          sync.Mutex
	queues      []string
	running     bool
	closeChan   chan struct{}
	closeOnce   sync.Once
}

// RabbitMQConsumerConfig configures the RabbitMQ consumer.
type RabbitMQConsumerConfig struct {
	URL         string
	QueuePrefix string
	Exchange    string
	Logger      *slog.Logger
}

// QueueName returns the queue bound to eventType.
func QueueName(prefix, eventType string) string {
	return prefix + "." + eventType
}

// NewRabbitMQConsumer creates a new RabbitMQ consumer.
func NewRabbitMQConsumer(cfg RabbitMQConsumerConfig, registry *ConsumerRegistry) (*RabbitMQConsumer, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.QueuePrefix == "" {
		cfg.QueuePrefix = DefaultQueuePrefix
	}
	if cfg.Exchange == "" {
		cfg.Exchange = ExchangeName
	}
	if registry == nil {
		registry = NewConsumerRegistry(cfg.Logger)
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	// Declare the exchange (should already exist from publisher)
	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	cfg.Logger.Info("RabbitMQ consumer connected",
		"exchange", cfg.Exchange,
		"queue_prefix", cfg.QueuePrefix,
	)

	return &RabbitMQConsumer{
		conn:        conn,
		channel:     ch,
		queuePrefix: cfg.QueuePrefix,
		exchange:    cfg.Exchange,
		registry:    registry,
		logger:      cfg.Logger,
		closeChan:   make(chan struct{}),
	}, nil
}

// RegisterConsumer registers an event consumer and declares a bound queue for each of its event types.
func (c *RabbitMQConsumer) RegisterConsumer(consumer EventConsumer) {
	c.registry.Register(consumer)

	for _, eventType := range consumer.EventTypes() {
		if err := c.bindQueue(eventType); err != nil {
			c.logger.Error("failed to bind queue for event type",
				"event_type", eventType,
				"error", err,
			)
		}
	}
}

func (c *RabbitMQConsumer) bindQueue(eventType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	queue := QueueName(c.queuePrefix, eventType)
	for _, q := range c.queues {
		if q == queue {
			return nil
		}
	}

	_, err := c.channel.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := c.channel.QueueBind(queue, eventType, c.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	c.queues = append(c.queues, queue)

	c.logger.Debug("bound queue to event type",
		"queue", queue,
		"event_type", eventType,
	)

	return nil
}

// Start begins consuming messages from every bound queue.
func (c *RabbitMQConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("consumer already running")
	}
	c.running = true
	queues := append([]string(nil), c.queues...)
	c.mu.Unlock()

	if len(queues) == 0 {
		return errors.New("no queues bound: register consumers before Start")
	}

	// Process one message at a time per queue
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs := make(chan amqp.Delivery)
	var wg sync.WaitGroup
	for _, queue := range queues {
		deliveries, err := c.channel.Consume(
			queue,
			"",    // consumer tag (auto-generated)
			false, // auto-ack (we'll manually ack)
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to start consuming %s: %w", queue, err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range deliveries {
				select {
				case msgs <- d:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	closed := make(chan struct{})
	go func() {
		wg.Wait()
		close(closed)
	}()

	c.logger.Info("started consuming events",
		"queues", queues,
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer context cancelled, stopping")
			return ctx.Err()

		case <-c.closeChan:
			c.logger.Info("consumer close requested, stopping")
			return nil

		case <-closed:
			c.logger.Warn("delivery channels closed")
			return fmt.Errorf("delivery channels closed unexpectedly")

		case msg := <-msgs:
			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error("failed to process message",
					"routing_key", msg.RoutingKey,
					"error", err,
				)
				// Requeue so another attempt can enqueue the work
				if nackErr := msg.Nack(false, true); nackErr != nil {
					c.logger.Error("failed to nack message", "error", nackErr)
				}
			} else {
				if ackErr := msg.Ack(false); ackErr != nil {
					c.logger.Error("failed to ack message", "error", ackErr)
				}
			}
		}
	}
}

func (c *RabbitMQConsumer) processMessage(ctx context.Context, msg amqp.Delivery) error {
	event, err := DecodeEnvelope(msg.Body)
	if err != nil {
		// Malformed messages are acked and discarded
		c.logger.Error("failed to decode event",
			"routing_key", msg.RoutingKey,
			"error", err,
		)
		return nil
	}

	start := time.Now()
	err = c.registry.Dispatch(ctx, event)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorContext(ctx, "event dispatch failed",
			"event_type", event.EventType,
			"event_id", event.EventID,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return err
	}

	c.logger.DebugContext(ctx, "event processed successfully",
		"event_type", event.EventType,
		"event_id", event.EventID,
		"duration_ms", duration.Milliseconds(),
	)

	return nil
}

// Close closes the consumer connection.
func (c *RabbitMQConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeOnce.Do(func() { close(c.closeChan) })
	c.running = false

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing channel", "error", err)
		}
	}

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return err
		}
	}

	c.logger.Info("RabbitMQ consumer closed")
	return nil
}
