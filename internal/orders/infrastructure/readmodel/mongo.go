package readmodel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/shopcore/internal/orders/application"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the Mongo collection holding order projections.
const CollectionName = "orders"

type addressDocument struct {
	Street    string `bson:"street"`
	City      string `bson:"city"`
	State     string `bson:"state"`
	ZipCode   string `bson:"zip_code"`
	Country   string `bson:"country"`
	Formatted string `bson:"formatted"`
}

type itemDocument struct {
	ID          string `bson:"id"`
	ProductID   string `bson:"product_id"`
	ProductName string `bson:"product_name"`
	Price       string `bson:"price"`
	Currency    string `bson:"currency"`
	Quantity    int    `bson:"quantity"`
	Total       string `bson:"total"`
}

// orderDocument is the stored shape of an order projection.
// Amounts stay decimal strings so no precision is lost.
type orderDocument struct {
	ID              string          `bson:"_id"`
	UserID          string          `bson:"user_id"`
	Status          string          `bson:"status"`
	ShippingAddress addressDocument `bson:"shipping_address"`
	Items           []itemDocument  `bson:"items"`
	TotalAmount     string          `bson:"total_amount"`
	Currency        string          `bson:"currency"`
	ItemCount       int             `bson:"item_count"`
	CreatedAt       time.Time       `bson:"created_at"`
	UpdatedAt       time.Time       `bson:"updated_at"`
}

func toDocument(o application.OrderDTO) orderDocument {
	doc := orderDocument{
		ID:     o.ID.String(),
		UserID: o.UserID.String(),
		Status: o.Status,
		ShippingAddress: addressDocument{
			Street:    o.ShippingAddress.Street,
			City:      o.ShippingAddress.City,
			State:     o.ShippingAddress.State,
			ZipCode:   o.ShippingAddress.ZipCode,
			Country:   o.ShippingAddress.Country,
			Formatted: o.FormattedAddress,
		},
		Items:       make([]itemDocument, 0, len(o.Items)),
		TotalAmount: o.TotalAmount,
		Currency:    o.Currency,
		ItemCount:   len(o.Items),
		CreatedAt:   o.CreatedAt.UTC(),
		UpdatedAt:   o.UpdatedAt.UTC(),
	}
	for _, item := range o.Items {
		doc.Items = append(doc.Items, itemDocument{
			ID:          item.ID.String(),
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Price:       item.Price,
			Currency:    item.Currency,
			Quantity:    item.Quantity,
			Total:       item.Total,
		})
	}
	return doc
}

func (d orderDocument) toDTO() (application.OrderDTO, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return application.OrderDTO{}, fmt.Errorf("invalid order document id %q: %w", d.ID, err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return application.OrderDTO{}, fmt.Errorf("invalid user id in order %s: %w", d.ID, err)
	}

	dto := application.OrderDTO{
		ID:     id,
		UserID: userID,
		Status: d.Status,
		ShippingAddress: application.ShippingAddressDTO{
			Street:  d.ShippingAddress.Street,
			City:    d.ShippingAddress.City,
			State:   d.ShippingAddress.State,
			ZipCode: d.ShippingAddress.ZipCode,
			Country: d.ShippingAddress.Country,
		},
		FormattedAddress: d.ShippingAddress.Formatted,
		Items:            make([]application.OrderItemDTO, 0, len(d.Items)),
		TotalAmount:      d.TotalAmount,
		Currency:         d.Currency,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
	for _, item := range d.Items {
		itemID, err := uuid.Parse(item.ID)
		if err != nil {
			return application.OrderDTO{}, fmt.Errorf("invalid item id in order %s: %w", d.ID, err)
		}
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return application.OrderDTO{}, fmt.Errorf("invalid product id in order %s: %w", d.ID, err)
		}
		dto.Items = append(dto.Items, application.OrderItemDTO{
			ID:          itemID,
			ProductID:   productID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Currency:    item.Currency,
			Quantity:    item.Quantity,
			Total:       item.Total,
		})
	}
	return dto, nil
}

// MongoReadModel stores order projections in MongoDB.
type MongoReadModel struct {
	coll *mongo.Collection
}

// NewMongoReadModel creates a read model over db.orders.
func NewMongoReadModel(db *mongo.Database) *MongoReadModel {
	return &MongoReadModel{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the index used by ListByUserID.
func (r *MongoReadModel) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create orders user index: %w", err)
	}
	return nil
}

// Get returns the projected order, or nil when no document exists.
func (r *MongoReadModel) Get(ctx context.Context, id uuid.UUID) (*application.OrderDTO, error) {
	var doc orderDocument
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
func (r *MongoReadModel) Create(ctx context.Context, order application.OrderDTO) error {
	_, err := r.coll.InsertOne(ctx, toDocument(order))
	return err
}

// Update replaces the document, inserting it when absent.
func (r *MongoReadModel) Update(ctx context.Context, order application.OrderDTO) error {
	_, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": order.ID.String()},
		toDocument(order),
		options.Replace().SetUpsert(true),
	)
	return err
}

// Delete removes the projection. A missing document is not an error.
func (r *MongoReadModel) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	return err
}

// ListByUserID returns the projected orders of a user, newest first.
func (r *MongoReadModel) ListByUserID(ctx context.Context, userID uuid.UUID) ([]application.OrderDTO, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID.String()}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]application.OrderDTO, 0)
	for cursor.Next(ctx) {
		var doc orderDocument
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
