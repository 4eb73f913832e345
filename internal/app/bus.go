package app

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/shopcore/pkg/config"
)

// newPublisher builds the publishing side of the configured bus binding.
func newPublisher(cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) (eventbus.Publisher, error) {
	switch cfg.EventBus {
	case config.EventBusRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("event bus %q requires a Redis client", cfg.EventBus)
		}
		return eventbus.NewRedisPublisher(redisClient, logger), nil

	case config.EventBusRabbitMQ:
		return eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)

	case config.EventBusKafka:
		return eventbus.NewKafkaPublisher(eventbus.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			Logger:  logger,
		})

	case config.EventBusInProcess:
		return eventbus.NewInProcessEventBus(logger), nil

	case config.EventBusNone:
		return eventbus.NewNoopPublisher(logger), nil

	default:
		return nil, fmt.Errorf("unsupported event bus: %q", cfg.EventBus)
	}
}

// newConsumer builds the consuming side matching c's publisher. The
// in-process binding consumes from the container's own bus.
func (c *Container) newConsumer() (eventbus.Consumer, error) {
	if c.Bus != nil {
		return c.Bus, nil
	}

	switch c.Config.EventBus {
	case config.EventBusRedis:
		return eventbus.NewRedisSubscriber(c.RedisClient, nil, c.Logger), nil

	case config.EventBusRabbitMQ:
		return eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL:    c.Config.RabbitMQURL,
			Logger: c.Logger,
		}, nil)

	case config.EventBusKafka:
		return eventbus.NewKafkaConsumer(eventbus.KafkaConfig{
			Brokers: c.Config.KafkaBrokers,
			Topic:   c.Config.KafkaTopic,
			GroupID: c.Config.KafkaGroupID,
			Logger:  c.Logger,
		}, nil)

	case config.EventBusNone:
		// Nothing is published, so the worker only runs its scheduled jobs.
		return eventbus.NewInProcessEventBus(c.Logger), nil

	default:
		return nil, fmt.Errorf("unsupported event bus: %q", c.Config.EventBus)
	}
}
