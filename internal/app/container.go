package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	orderApp "github.com/felixgeelhaar/shopcore/internal/orders/application"
	sharedApplication "github.com/felixgeelhaar/shopcore/internal/shared/application"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/outbox"
	userApp "github.com/felixgeelhaar/shopcore/internal/users/application"
	"github.com/felixgeelhaar/shopcore/pkg/config"
	"github.com/felixgeelhaar/shopcore/pkg/observability"
)

const connectTimeout = 10 * time.Second

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics
	Health  *observability.HealthRegistry

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Secondary stores, nil in local mode
	RedisClient *redis.Client
	MongoClient *mongo.Client

	Stores *RepositoryFactory

	// Event bus. Bus is set when the in-process binding is used.
	Publisher      eventbus.Publisher
	EventPublisher *eventbus.DomainPublisher
	Bus            *eventbus.InProcessEventBus

	OutboxRepo outbox.Repository
	UnitOfWork sharedApplication.UnitOfWork
	Propagator *sharedApplication.Propagator

	// Application services
	Users  *userApp.Service
	Orders *orderApp.Service

	// Worker is built with the container in local mode, so events raised by a
	// command are handled in the same process.
	Worker *Worker
}

// Option configures a Container.
type Option func(*Container)

// WithMetrics sets the metrics sink shared by every component.
func WithMetrics(metrics observability.Metrics) Option {
	return func(c *Container) {
		if metrics != nil {
			c.Metrics = metrics
		}
	}
}

func newContainer(cfg *config.Config, logger *slog.Logger, opts []Option) *Container {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NoopMetrics{},
		Health:  observability.NewHealthRegistry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New builds the container for the configured mode.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	if cfg.IsLocalMode() {
		return NewLocalContainer(ctx, cfg, logger, opts...)
	}
	return NewContainer(ctx, cfg, logger, opts...)
}

// NewContainer creates the server container: PostgreSQL write store, MongoDB
// read models, Redis cache and the configured event bus.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	c := newContainer(cfg, logger, opts)
	if err := c.initServer(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) initServer(ctx context.Context) error {
	cfg := c.Config
	if err := c.openDatabase(ctx, database.Config{
		Driver: database.Driver(cfg.DatabaseDriver),
		URL:    cfg.DatabaseURL,
	}); err != nil {
		return err
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	c.RedisClient = redis.NewClient(opt)
	if err := c.RedisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	c.Health.Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
		return c.RedisClient.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")

	mongoDB, err := c.openMongo(ctx)
	if err != nil {
		return err
	}

	c.Stores = NewRepositoryFactory(c.DBConn, mongoDB, c.RedisClient)
	if err := c.ensureIndexes(ctx); err != nil {
		return err
	}

	publisher, err := newPublisher(cfg, c.RedisClient, c.Logger)
	if err != nil {
		return err
	}
	c.setPublisher(publisher)
	if rabbit, ok := publisher.(*eventbus.RabbitMQPublisher); ok {
		c.Health.Register("rabbitmq", observability.RabbitMQHealthChecker(rabbit.Ping))
	}

	var propagatorOpts []sharedApplication.PropagatorOption
	if cfg.OutboxEnabled {
		c.OutboxRepo = c.Stores.OutboxRepository()
		propagatorOpts = append(propagatorOpts, sharedApplication.WithOutbox(outbox.NewEventStore(c.OutboxRepo)))
		c.Logger.Info("outbox enabled, events are relayed by the worker")
	}

	c.buildServices(propagatorOpts...)
	return nil
}

// NewLocalContainer creates a container for local mode with SQLite.
// This provides zero-config operation without PostgreSQL, MongoDB, Redis or a broker:
// read models and the cache are in memory and events run through the in-process bus.
func NewLocalContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	c := newContainer(cfg, logger, opts)
	if err := c.initLocal(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) initLocal(ctx context.Context) error {
	cfg := c.Config
	sqlitePath := cfg.SQLitePath
	if sqlitePath == "" {
		sqlitePath = database.DefaultSQLitePath()
	}
	if err := c.openDatabase(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: sqlitePath,
	}); err != nil {
		return err
	}

	c.Stores = NewRepositoryFactory(c.DBConn, nil, nil)
	c.setPublisher(eventbus.NewInProcessEventBus(c.Logger))

	if cfg.OutboxEnabled {
		c.Logger.Warn("outbox is not used in local mode, events are dispatched in process")
	}

	c.buildServices()

	worker, err := c.NewWorker()
	if err != nil {
		return err
	}
	c.Worker = worker
	return nil
}

func (c *Container) openDatabase(ctx context.Context, cfg database.Config) error {
	if cfg.Driver == database.DriverSQLite && cfg.SQLitePath != "" {
		path, err := database.ResolveSQLitePath(cfg.SQLitePath)
		if err != nil {
			return err
		}
		cfg.SQLitePath = path
		if !sqlite.IsMemoryPath(path) {
			if err := database.EnsureDirectory(path); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := database.NewConnection(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrations.Run(ctx, conn); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.UnitOfWork = database.NewUnitOfWork(conn)
	c.Health.Register("database", observability.DatabaseHealthChecker(conn.Ping))
	c.Logger.Info("connected to database", "driver", c.DBDriver.String())
	return nil
}

func (c *Container) openMongo(ctx context.Context) (*mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(c.Config.MongoURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	c.MongoClient = client

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	c.Health.Register("mongodb", observability.MongoHealthChecker(func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	}))
	c.Logger.Info("connected to MongoDB", "database", c.Config.MongoDatabase)
	return client.Database(c.Config.MongoDatabase), nil
}

func (c *Container) ensureIndexes(ctx context.Context) error {
	type indexer interface {
		EnsureIndexes(ctx context.Context) error
	}
	for _, store := range []any{c.Stores.UserReadModel(), c.Stores.OrderReadModel()} {
		if ix, ok := store.(indexer); ok {
			if err := ix.EnsureIndexes(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Container) setPublisher(publisher eventbus.Publisher) {
	c.Publisher = publisher
	c.EventPublisher = eventbus.NewDomainPublisher(publisher)
	if bus, ok := publisher.(*eventbus.InProcessEventBus); ok {
		c.Bus = bus
	}
	c.Logger.Info("event publisher ready",
		"binding", fmt.Sprintf("%T", publisher),
		"delivery", publisher.Delivery().String(),
	)
}

func (c *Container) buildServices(opts ...sharedApplication.PropagatorOption) {
	opts = append(opts, sharedApplication.WithMetrics(c.Metrics))
	c.Propagator = sharedApplication.NewPropagator(c.UnitOfWork, c.EventPublisher, c.Logger, opts...)

	c.Users = userApp.NewService(
		c.Stores.UserRepository(),
		c.Stores.UserReadModel(),
		c.Stores.UserCache(),
		c.Propagator,
		c.Config.UserCacheTTL,
	)
	c.Orders = orderApp.NewService(
		c.Stores.OrderRepository(),
		c.Stores.OrderReadModel(),
		c.Propagator,
	)
}

// Close releases every resource in reverse order of creation. The local
// worker is drained first so queued tasks finish against open stores.
func (c *Container) Close() {
	if c.Worker != nil {
		if err := c.Worker.Close(); err != nil {
			c.Logger.Warn("error closing worker", "error", err)
		}
	}

	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.MongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		if err := c.MongoClient.Disconnect(ctx); err != nil {
			c.Logger.Warn("error closing MongoDB connection", "error", err)
		}
		cancel()
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBDriver.String())
		}
	}
}
