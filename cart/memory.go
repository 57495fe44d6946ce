package cart

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipebook/models"
)

// MemoryRepository is an in-process Repository with the same
// one-cart-per-user and one-line-per-recipe guarantees as the Mongo one.
type MemoryRepository struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]*models.Cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[primitive.ObjectID]*models.Cart)}
}

func (m *MemoryRepository) FindByUser(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneCart(c), nil
}

func (m *MemoryRepository) AddItemIfAbsent(_ context.Context, userID primitive.ObjectID, item models.CartItem) (bool, error) {
	if err := models.Validate(item); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	c, ok := m.carts[userID]
	if !ok {
		c = &models.Cart{ID: primitive.NewObjectID(), UserID: userID, Items: []models.CartItem{}, CreatedAt: now, UpdatedAt: now}
		m.carts[userID] = c
	}
	for _, existing := range c.Items {
		if existing.RecipeID == item.RecipeID {
			return false, nil
		}
	}
	c.Items = append(c.Items, item)
	c.UpdatedAt = now
	return true, nil
}

func (m *MemoryRepository) SetItemQuantity(_ context.Context, userID, itemID primitive.ObjectID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return models.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return models.ErrNotFound
}

func (m *MemoryRepository) RemoveItem(_ context.Context, userID, itemID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return models.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return models.ErrNotFound
}

// Count is the number of stored carts.
func (m *MemoryRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.carts)
}

func cloneCart(c *models.Cart) *models.Cart {
	out := *c
	out.Items = append([]models.CartItem(nil), c.Items...)
	return &out
}
