package orders

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"recipebook/db"
	"recipebook/models"
)

// Repository is the order store. Orders are written once and never
// changed.
type Repository interface {
	Insert(ctx context.Context, order *models.Order) error
	// FindByOrderID looks an order up by its generated orderId, not by _id.
	FindByOrderID(ctx context.Context, orderID string) (*models.Order, error)
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(database *mongo.Database) Repository {
	return &mongoRepository{collection: database.Collection(db.OrdersCollection)}
}

func (m *mongoRepository) Insert(ctx context.Context, order *models.Order) error {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	if err := models.Validate(order); err != nil {
		return err
	}

	res, err := m.collection.InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("order %s: %w", order.OrderID, models.ErrConflict)
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	order.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (m *mongoRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	var order models.Order
	err := m.collection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}
