package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"recipebook/models"
	"recipebook/recipes"
)

// Cart line actions accepted by UpdateItem.
const (
	ActionUpdate = "update"
	ActionRemove = "remove"
)

const loadTimeout = 5 * time.Second

// Service is the cart manager: one cart per authenticated user.
type Service struct {
	repo    Repository
	recipes recipes.Repository
	cache   Cache
	logger  *zap.Logger
	sfg     singleflight.Group
}

func NewService(repo Repository, recipeRepo recipes.Repository, cache Cache, logger *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		recipes: recipeRepo,
		cache:   cache,
		logger:  logger,
	}
}

// AddItem puts recipeID in the identity's cart with quantity 1, creating
// the cart on first use. Adding a recipe that is already in the cart
// changes nothing.
func (s *Service) AddItem(ctx context.Context, identity *models.Identity, recipeID string) error {
	if !identity.Authenticated() {
		return models.ErrUnauthorized
	}

	rid, err := primitive.ObjectIDFromHex(recipeID)
	if err != nil {
		return fmt.Errorf("recipe %q: %w", recipeID, models.ErrNotFound)
	}
	if _, err := s.recipes.FindByID(ctx, rid); err != nil {
		return err
	}

	item := models.CartItem{ID: primitive.NewObjectID(), RecipeID: rid, Quantity: 1}
	added, err := s.repo.AddItemIfAbsent(ctx, identity.UserID, item)
	if err != nil {
		return err
	}
	if added {
		s.invalidate(identity.UserID)
	}
	s.logger.Debug("add to cart",
		zap.String("user", identity.UserID.Hex()),
		zap.String("recipe", recipeID),
		zap.Bool("added", added),
	)
	return nil
}

// View returns the identity's cart with recipes resolved. A user without
// a cart gets an empty one.
func (s *Service) View(ctx context.Context, identity *models.Identity) (*models.CartView, error) {
	if !identity.Authenticated() {
		return nil, models.ErrUnauthorized
	}
	userID := identity.UserID

	// merged callers share the load, so it must not die with the first
	// caller's request
	v, err, _ := s.sfg.Do(userID.Hex(), func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		view, err := s.cache.Get(ctx, userID)
		if err == nil {
			return view, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.Warn("cart cache get failed", zap.Error(err))
		}

		gen, genErr := s.cache.Generation(ctx, userID)
		if genErr != nil {
			s.logger.Warn("cart cache generation failed", zap.Error(genErr))
		}

		view, err = s.load(ctx, userID)
		if err != nil {
			return nil, err
		}

		if genErr == nil {
			err := s.cache.Set(ctx, userID, gen, view)
			switch {
			case errors.Is(err, ErrCacheStale):
				s.logger.Debug("cart changed during load, not caching", zap.String("user", userID.Hex()))
			case err != nil:
				s.logger.Warn("cart cache set failed", zap.Error(err))
			}
		}
		return view, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.CartView), nil
}

func (s *Service) load(ctx context.Context, userID primitive.ObjectID) (*models.CartView, error) {
	c, err := s.repo.FindByUser(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return &models.CartView{Cart: models.Cart{UserID: userID, Items: []models.CartItem{}}, Lines: []models.CartLineView{}}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.RecipeID)
	}
	resolved, err := s.recipes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart recipes: %w", err)
	}

	lines := make([]models.CartLineView, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, models.CartLineView{Item: it, Recipe: resolved[it.RecipeID]})
	}
	return &models.CartView{Cart: *c, Lines: lines}, nil
}

// UpdateItem changes or removes the line item itemID. For ActionUpdate the
// quantity replaces the stored one as given, zero and negatives
// included; it only has to read as a number.
func (s *Service) UpdateItem(ctx context.Context, identity *models.Identity, itemID, action, quantity string) error {
	if !identity.Authenticated() {
		return models.ErrUnauthorized
	}

	iid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return fmt.Errorf("cart item %q: %w", itemID, models.ErrNotFound)
	}

	switch action {
	case ActionUpdate:
		qty, err := strconv.Atoi(strings.TrimSpace(quantity))
		if err != nil {
			return fmt.Errorf("quantity %q is not a number: %w", quantity, models.ErrValidation)
		}
		err = s.repo.SetItemQuantity(ctx, identity.UserID, iid, qty)
		if err != nil {
			return err
		}
	case ActionRemove:
		if err := s.repo.RemoveItem(ctx, identity.UserID, iid); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%q: %w", action, models.ErrInvalidAction)
	}

	s.invalidate(identity.UserID)
	return nil
}

func (s *Service) invalidate(userID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cart cache invalidate failed", zap.Error(err))
	}
}
