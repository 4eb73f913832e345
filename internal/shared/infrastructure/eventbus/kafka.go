package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// EventTypeHeader carries the event type on every Kafka message.
const EventTypeHeader = "event_type"

// KafkaConfig configures the Kafka publisher and consumer.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Logger  *slog.Logger
}

// KafkaPublisher appends events to a single topic keyed by aggregate id,
// so events of one aggregate keep their order within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher. No connection is made until the first write.
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, errors.New("kafka: no topic configured")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}

	cfg.Logger.Info("Kafka publisher configured",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
	)

	return &KafkaPublisher{writer: writer, logger: cfg.Logger}, nil
}

// Publish writes payload to the topic and waits for all in-sync replicas.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	msg := kafka.Message{
		Key:   partitionKey(payload),
		Value: payload,
		Headers: []kafka.Header{
			{Key: EventTypeHeader, Value: []byte(eventType)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish message",
			"event_type", eventType,
			"error", err,
		)
		return fmt.Errorf("kafka publish %s: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "message published",
		"event_type", eventType,
		"size", len(payload),
	)
	return nil
}

// Delivery reports durable delivery.
func (p *KafkaPublisher) Delivery() Delivery {
	return DeliveryDurable
}

// Close flushes pending writes and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// partitionKey extracts the aggregate id from an encoded envelope.
func partitionKey(payload []byte) []byte {
	var head struct {
		AggregateID string `json:"aggregate_id"`
	}
	if err := json.Unmarshal(payload, &head); err != nil || head.AggregateID == "" {
		return nil
	}
	return []byte(head.AggregateID)
}

// KafkaConsumer reads the event topic as a member of a consumer group.
type KafkaConsumer struct {
	reader   *kafka.Reader
	registry *ConsumerRegistry
	logger   *slog.Logger
}

// NewKafkaConsumer creates a group consumer for cfg.Topic.
func NewKafkaConsumer(cfg KafkaConfig, registry *ConsumerRegistry) (*KafkaConsumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.GroupID == "" {
		return nil, errors.New("kafka: no consumer group configured")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if registry == nil {
		registry = NewConsumerRegistry(cfg.Logger)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return &KafkaConsumer{reader: reader, registry: registry, logger: cfg.Logger}, nil
}

// RegisterConsumer registers an event consumer. Every type arrives on the one topic.
func (c *KafkaConsumer) RegisterConsumer(consumer EventConsumer) {
	c.registry.Register(consumer)
}

// Start fetches, dispatches and commits messages until ctx is cancelled.
// The offset is committed after dispatch, whether or not a handler failed.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("started consuming events",
		"topic", c.reader.Config().Topic,
		"group_id", c.reader.Config().GroupID,
	)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			c.logger.Error("could not fetch message, retrying", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		c.process(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("failed to commit message",
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

func (c *KafkaConsumer) process(ctx context.Context, msg kafka.Message) {
	event, err := DecodeEnvelope(msg.Value)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to decode event, skipping",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return
	}

	if err := c.registry.Dispatch(ctx, event); err != nil {
		c.logger.ErrorContext(ctx, "event dispatch failed",
			"event_type", event.EventType,
			"event_id", event.EventID,
			"error", err,
		)
	}
}

// Close leaves the consumer group.
func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
