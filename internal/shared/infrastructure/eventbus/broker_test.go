package eventbus_test

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/eventbus"
	userDomain "github.com/felixgeelhaar/shopcore/internal/users/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// channelConsumer forwards every handled envelope to a channel.
type channelConsumer struct {
	eventTypes []string
	received   chan *eventbus.Envelope
}

func newChannelConsumer(eventTypes ...string) *channelConsumer {
	return &channelConsumer{eventTypes: eventTypes, received: make(chan *eventbus.Envelope, 16)}
}

func (c *channelConsumer) EventTypes() []string { return c.eventTypes }

func (c *channelConsumer) Handle(_ context.Context, event *eventbus.Envelope) error {
	c.received <- event
	return nil
}

func (c *channelConsumer) await(t *testing.T, userID uuid.UUID) *eventbus.Envelope {
	t.Helper()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case env := <-c.received:
			if env.AggregateID == userID {
				return env
			}
		case <-deadline:
			t.Fatal("event not delivered")
			return nil
		}
	}
}

func runBrokerRoundTrip(t *testing.T, publisher eventbus.Publisher, consumer eventbus.Consumer, settle func()) {
	t.Helper()
	sink := newChannelConsumer(userDomain.EventTypeUserRegistered)
	consumer.RegisterConsumer(sink)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = consumer.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		wg.Wait()
		_ = consumer.Close()
	})
	settle()

	userID := uuid.New()
	err := eventbus.NewDomainPublisher(publisher).PublishEvent(ctx, userDomain.NewUserRegistered(userID))
	require.NoError(t, err)

	env := sink.await(t, userID)
	assert.Equal(t, userDomain.EventTypeUserRegistered, env.EventType)
	assert.Equal(t, userDomain.AggregateType, env.AggregateType)
}

func TestRedisBus_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	publisher := eventbus.NewRedisPublisher(client, nil)
	assert.Equal(t, eventbus.DeliveryAtMostOnce, publisher.Delivery())

	subscriber := eventbus.NewRedisSubscriber(client, nil, nil)
	runBrokerRoundTrip(t, publisher, subscriber, func() {
		// Pub/sub drops messages published before the subscription is live
		require.Eventually(t, func() bool {
			n, err := client.PubSubNumPat(context.Background()).Result()
			return err == nil && n > 0
		}, 5*time.Second, 50*time.Millisecond)
	})
}

func TestRabbitMQBus_RoundTrip(t *testing.T) {
	url := os.Getenv("TEST_RABBITMQ_URL")
	if url == "" {
		t.Skip("TEST_RABBITMQ_URL not set")
	}

	publisher, err := eventbus.NewRabbitMQPublisher(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = publisher.Close() })
	assert.Equal(t, eventbus.DeliveryDurable, publisher.Delivery())

	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:         url,
		QueuePrefix: "shop.test." + uuid.NewString()[:8],
	}, nil)
	require.NoError(t, err)

	runBrokerRoundTrip(t, publisher, consumer, func() {})
}

func TestKafkaBus_RoundTrip(t *testing.T) {
	brokers := os.Getenv("TEST_KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("TEST_KAFKA_BROKERS not set")
	}
	cfg := eventbus.KafkaConfig{
		Brokers: strings.Split(brokers, ","),
		Topic:   "shop.test.events",
		GroupID: "shop-test-" + uuid.NewString()[:8],
	}

	publisher, err := eventbus.NewKafkaPublisher(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = publisher.Close() })

	consumer, err := eventbus.NewKafkaConsumer(cfg, nil)
	require.NoError(t, err)

	runBrokerRoundTrip(t, publisher, consumer, func() {})
}
