package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ChannelPrefix prefixes the pub/sub channel of every event type.
const ChannelPrefix = "events:"

// ChannelName returns the pub/sub channel for eventType.
func ChannelName(eventType string) string {
	return ChannelPrefix + eventType
}

// RedisPublisher publishes events over Redis pub/sub.
// Events published while no subscriber is connected are lost.
type RedisPublisher struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisPublisher creates a publisher on an existing client. The client is owned by the caller.
func NewRedisPublisher(client *redis.Client, logger *slog.Logger) *RedisPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPublisher{client: client, logger: logger}
}

// Publish sends payload on the channel of eventType.
func (p *RedisPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	receivers, err := p.client.Publish(ctx, ChannelName(eventType), payload).Result()
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to publish message",
			"event_type", eventType,
			"error", err,
		)
		return fmt.Errorf("redis publish %s: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "message published",
		"event_type", eventType,
		"receivers", receivers,
		"size", len(payload),
	)
	return nil
}

// Delivery reports at-most-once.
func (p *RedisPublisher) Delivery() Delivery {
	return DeliveryAtMostOnce
}

// Close is a no-op; the client is shared.
func (p *RedisPublisher) Close() error {
	return nil
}

// RedisSubscriber listens on every event channel with a single pattern subscription.
type RedisSubscriber struct {
	client   *redis.Client
	registry *ConsumerRegistry
	logger   *slog.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
}

// NewRedisSubscriber creates a subscriber on an existing client.
func NewRedisSubscriber(client *redis.Client, registry *ConsumerRegistry, logger *slog.Logger) *RedisSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = NewConsumerRegistry(logger)
	}
	return &RedisSubscriber{client: client, registry: registry, logger: logger}
}

// RegisterConsumer registers an event consumer.
func (s *RedisSubscriber) RegisterConsumer(consumer EventConsumer) {
	s.registry.Register(consumer)
}

// Start pattern-subscribes to all event channels and dispatches until ctx is cancelled.
// Decode and dispatch failures are logged and the message is dropped.
func (s *RedisSubscriber) Start(ctx context.Context) error {
	pubsub := s.client.PSubscribe(ctx, ChannelPrefix+"*")

	// Wait for the subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	s.mu.Lock()
	s.pubsub = pubsub
	s.mu.Unlock()

	s.logger.Info("started consuming events",
		"pattern", ChannelPrefix+"*",
	)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = pubsub.Close()
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			s.handle(ctx, msg)
		}
	}
}

func (s *RedisSubscriber) handle(ctx context.Context, msg *redis.Message) {
	event, err := DecodeEnvelope([]byte(msg.Payload))
	if err != nil {
		s.logger.WarnContext(ctx, "bad event payload",
			"channel", msg.Channel,
			"error", err,
		)
		return
	}
	if channelType := strings.TrimPrefix(msg.Channel, ChannelPrefix); channelType != event.EventType {
		s.logger.WarnContext(ctx, "event type does not match channel",
			"channel", msg.Channel,
			"event_type", event.EventType,
		)
	}

	if err := s.registry.Dispatch(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "event dispatch failed",
			"event_type", event.EventType,
			"event_id", event.EventID,
			"error", err,
		)
	}
}

// Close ends the subscription. The client is owned by the caller.
func (s *RedisSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pubsub == nil {
		return nil
	}
	err := s.pubsub.Close()
	s.pubsub = nil
	return err
}
