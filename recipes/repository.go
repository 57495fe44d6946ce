package recipes

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

// Repository is the recipe store. Recipes are never updated or deleted.
type Repository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Recipe, error)
	List(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, error)
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(database *mongo.Database) Repository {
	return &mongoRepository{collection: database.Collection(db.RecipesCollection)}
}

func (m *mongoRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = time.Now()
	}
	if err := models.Validate(recipe); err != nil {
		return err
	}

	res, err := m.collection.InsertOne(ctx, recipe)
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}
	recipe.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (m *mongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	var recipe models.Recipe
	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&recipe)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}
	return &recipe, nil
}

func (m *mongoRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Recipe, error) {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	out := make(map[primitive.ObjectID]*models.Recipe, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := m.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find recipes: %w", err)
	}
	defer cursor.Close(ctx)

	var list []models.Recipe
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("failed to decode recipes: %w", err)
	}
	for i := range list {
		out[list[i].ID] = &list[i]
	}
	return out, nil
}

func (m *mongoRepository) List(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, error) {
	ctx, cancel := db.WithTimeout(ctx)
	defer cancel()

	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Difficulty != "" {
		query["difficulty"] = filter.Difficulty
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer cursor.Close(ctx)

	var list []models.Recipe
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("failed to decode recipes: %w", err)
	}
	if list == nil {
		list = []models.Recipe{}
	}
	return list, nil
}
