package recipes

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipebook/models"
	"recipebook/users"
)

// Service is the catalog: listing, lookup and creation, with creators
// resolved on reads.
type Service struct {
	repo  Repository
	users users.Repository
}

func NewService(repo Repository, userRepo users.Repository) *Service {
	return &Service{repo: repo, users: userRepo}
}

// List returns recipes matching filter, newest first.
func (s *Service) List(ctx context.Context, filter models.RecipeFilter) ([]models.Recipe, error) {
	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(list))
	for _, r := range list {
		ids = append(ids, r.CreatedBy)
	}
	creators, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creators: %w", err)
	}
	for i := range list {
		list[i].Creator = creators[list[i].CreatedBy]
	}
	return list, nil
}

// Get returns one recipe with its creator.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	recipe, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	creators, err := s.users.FindByIDs(ctx, []primitive.ObjectID{recipe.CreatedBy})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creator: %w", err)
	}
	recipe.Creator = creators[recipe.CreatedBy]
	return recipe, nil
}

// Create stores a recipe on behalf of the identity.
func (s *Service) Create(ctx context.Context, identity *models.Identity, recipe *models.Recipe) error {
	if !identity.Authenticated() {
		return models.ErrUnauthorized
	}
	recipe.ID = primitive.NilObjectID
	recipe.CreatedBy = identity.UserID
	return s.repo.Create(ctx, recipe)
}
