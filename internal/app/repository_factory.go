package app

import (
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	orderApp "github.com/felixgeelhaar/shopcore/internal/orders/application"
	orderDomain "github.com/felixgeelhaar/shopcore/internal/orders/domain"
	orderPersistence "github.com/felixgeelhaar/shopcore/internal/orders/infrastructure/persistence"
	orderReadModel "github.com/felixgeelhaar/shopcore/internal/orders/infrastructure/readmodel"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/shopcore/internal/shared/infrastructure/outbox"
	userApp "github.com/felixgeelhaar/shopcore/internal/users/application"
	userDomain "github.com/felixgeelhaar/shopcore/internal/users/domain"
	userCache "github.com/felixgeelhaar/shopcore/internal/users/infrastructure/cache"
	userPersistence "github.com/felixgeelhaar/shopcore/internal/users/infrastructure/persistence"
	userReadModel "github.com/felixgeelhaar/shopcore/internal/users/infrastructure/readmodel"
)

// RepositoryFactory creates the stores of each aggregate. The write store
// follows the connection's driver; read models use MongoDB and the cache uses
// Redis when those clients are set, and in-memory stores otherwise.
type RepositoryFactory struct {
	conn    database.Connection
	driver  database.Driver
	mongoDB *mongo.Database
	redis   *redis.Client
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection, mongoDB *mongo.Database, redisClient *redis.Client) *RepositoryFactory {
	return &RepositoryFactory{
		conn:    conn,
		driver:  conn.Driver(),
		mongoDB: mongoDB,
		redis:   redisClient,
	}
}

// Driver returns the write-store driver.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// UserRepository creates the user write store.
func (f *RepositoryFactory) UserRepository() userDomain.Repository {
	return userPersistence.NewUserRepository(f.conn)
}

// OrderRepository creates the order write store.
func (f *RepositoryFactory) OrderRepository() orderDomain.Repository {
	return orderPersistence.NewOrderRepository(f.conn)
}

// OutboxRepository creates the outbox store on the write-store connection.
func (f *RepositoryFactory) OutboxRepository() outbox.Repository {
	return outbox.NewSQLRepository(f.conn)
}

// UserReadModel creates the user projection store.
func (f *RepositoryFactory) UserReadModel() userApp.ReadModel {
	if f.mongoDB != nil {
		return userReadModel.NewMongoReadModel(f.mongoDB)
	}
	return userReadModel.NewMemoryReadModel()
}

// OrderReadModel creates the order projection store.
func (f *RepositoryFactory) OrderReadModel() orderApp.ReadModel {
	if f.mongoDB != nil {
		return orderReadModel.NewMongoReadModel(f.mongoDB)
	}
	return orderReadModel.NewMemoryReadModel()
}

// UserCache creates the user cache.
func (f *RepositoryFactory) UserCache() userApp.Cache {
	if f.redis != nil {
		return userCache.NewRedisCache(f.redis)
	}
	return userCache.NewMemoryCache()
}
