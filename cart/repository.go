package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"recipebook/db"
	"recipebook/models"
)

// Repository is the cart store. Every mutation is a single-document
// update so a failed write leaves the stored cart as it was.
type Repository interface {
	// FindByUser returns models.ErrNotFound when the user has no cart.
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	// AddItemIfAbsent creates the cart if needed and appends item unless a
	// line for the same recipe already exists. added is false for the
	// no-op case.
	AddItemIfAbsent(ctx context.Context, userID primitive.ObjectID, item models.CartItem) (added bool, err error)
	// SetItemQuantity and RemoveItem return models.ErrNotFound when the
	// cart or the line item does not exist.
	SetItemQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) error
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(database *mongo.Database) Repository {
	return &mongoRepository{collection: database.Collection(db.CartsCollection)}
}

func (m *mongoRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	var cart models.Cart
	err := m.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	return &cart, nil
}

func (m *mongoRepository) AddItemIfAbsent(ctx context.Context, userID primitive.ObjectID, item models.CartItem) (bool, error) {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	if err := models.Validate(item); err != nil {
		return false, err
	}
	if err := m.ensureCart(ctx, userID); err != nil {
		return false, err
	}

	now := time.Now()
	filter := bson.M{
		"userId":         userID,
		"items.recipeId": bson.M{"$ne": item.RecipeID},
	}
	update := bson.M{
		"$push": bson.M{"items": item},
		"$set":  bson.M{"updatedAt": now},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to add item: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

// ensureCart upserts an empty cart. The unique index on userId turns a
// lost creation race into a duplicate key error, which means the cart
// now exists.
func (m *mongoRepository) ensureCart(ctx context.Context, userID primitive.ObjectID) error {
	now := time.Now()
	update := bson.M{
		"$setOnInsert": bson.M{
			"userId":    userID,
			"items":     bson.A{},
			"createdAt": now,
			"updatedAt": now,
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, bson.M{"userId": userID}, update, opts)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

func (m *mongoRepository) SetItemQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) error {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"userId":    userID,
		"items._id": itemID,
	}
	update := bson.M{
		"$set": bson.M{
			"items.$[elem].quantity": quantity,
			"updatedAt":              time.Now(),
		},
	}
	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem._id": itemID},
		},
	})

	result, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to update item quantity: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (m *mongoRepository) RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) error {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"userId":    userID,
		"items._id": itemID,
	}
	update := bson.M{
		"$pull": bson.M{"items": bson.M{"_id": itemID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
