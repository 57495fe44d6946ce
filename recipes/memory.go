package recipes

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipebook/models"
)

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	mu      sync.RWMutex
	recipes map[primitive.ObjectID]models.Recipe
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{recipes: make(map[primitive.ObjectID]models.Recipe)}
}

func (m *MemoryRepository) Create(_ context.Context, recipe *models.Recipe) error {
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = time.Now()
	}
	if err := models.Validate(recipe); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	recipe.ID = primitive.NewObjectID()
	m.recipes[recipe.ID] = *recipe
	return nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.recipes[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &r, nil
}

func (m *MemoryRepository) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[primitive.ObjectID]*models.Recipe, len(ids))
	for _, id := range ids {
		if r, ok := m.recipes[id]; ok {
			out[id] = &r
		}
	}
	return out, nil
}

func (m *MemoryRepository) List(_ context.Context, filter models.RecipeFilter) ([]models.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := []models.Recipe{}
	for _, r := range m.recipes {
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if filter.Difficulty != "" && r.Difficulty != filter.Difficulty {
			continue
		}
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}
