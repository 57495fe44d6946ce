package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection   = "users"
	RecipesCollection = "recipes"
	CartsCollection   = "carts"
	OrdersCollection  = "orders"
)

// QueryTimeout bounds a single repository call.
const QueryTimeout = 5 * time.Second

// WithTimeout derives the context for one data-store call. A parent with
// an earlier deadline keeps it.
func WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, QueryTimeout)
}

// Connect dials MongoDB, pings it and returns the named database. The
// caller owns the client and disconnects it on shutdown.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

// EnsureIndexes creates the unique indexes the stores rely on: one user
// per username, one cart per user, one order per orderId.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	unique := map[string]string{
		UsersCollection:  "username",
		CartsCollection:  "userId",
		OrdersCollection: "orderId",
	}
	for coll, key := range unique {
		_, err := database.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: key, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("failed to create %s.%s index: %w", coll, key, err)
		}
	}

	_, err := database.Collection(RecipesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "category", Value: 1}, {Key: "difficulty", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create recipes filter index: %w", err)
	}
	return nil
}

// ParseID converts a hex id from a URL or form. ok is false for anything
// that is not a valid ObjectID.
func ParseID(hex string) (id primitive.ObjectID, ok bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	return id, err == nil
}
