package readmodel

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/felixgeelhaar/shopcore/internal/users/application"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding user projections.
const CollectionName = "users"

// userDocument is the stored shape of a user projection.
type userDocument struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Name      string    `bson:"name"`
	IsActive  bool      `bson:"is_active"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toDocument(u application.UserDTO) userDocument {
	return userDocument{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}
}

func (d userDocument) toDTO() (application.UserDTO, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return application.UserDTO{}, fmt.Errorf("invalid user document id %q: %w", d.ID, err)
	}
	return application.UserDTO{
		ID:        id,
		Email:     d.Email,
		Name:      d.Name,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}, nil
}

// MongoReadModel stores user projections in MongoDB.
type MongoReadModel struct {
	coll *mongo.Collection
}

// NewMongoReadModel creates a read model over db.users.
func NewMongoReadModel(db *mongo.Database) *MongoReadModel {
	return &MongoReadModel{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the email index used by SearchByEmail.
func (r *MongoReadModel) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}
	return nil
}

// Get returns the projected user, or nil when no document exists.
func (r *MongoReadModel) Get(ctx context.Context, id uuid.UUID) (*application.UserDTO, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	dto, err := doc.toDTO()
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// Create inserts the projection. It fails if the document already exists.
func (r *MongoReadModel) Create(ctx context.Context, user application.UserDTO) error {
	_, err := r.coll.InsertOne(ctx, toDocument(user))
	return err
}

// Update replaces the document, inserting it when absent.
func (r *MongoReadModel) Update(ctx context.Context, user application.UserDTO) error {
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": user.ID.String()},
		toDocument(user),
		options.Replace().SetUpsert(true),
	)
	return err
}

// Delete removes the projection. A missing document is not an error.
func (r *MongoReadModel) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	return err
}

// SearchByEmail runs a case-insensitive substring match on email.
func (r *MongoReadModel) SearchByEmail(ctx context.Context, fragment string, limit int) ([]application.UserDTO, error) {
	filter := bson.M{"email": bson.M{
		"$regex":   regexp.QuoteMeta(fragment),
		"$options": "i",
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "email", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]application.UserDTO, 0)
	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		dto, err := doc.toDTO()
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, cursor.Err()
}
