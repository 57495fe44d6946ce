package orders

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipebook/models"
)

// MemoryRepository is an in-process Repository keyed by orderId.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]models.Order)}
}

func (m *MemoryRepository) Insert(_ context.Context, order *models.Order) error {
	if err := models.Validate(order); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[order.OrderID]; ok {
		return fmt.Errorf("order %s: %w", order.OrderID, models.ErrConflict)
	}
	order.ID = primitive.NewObjectID()
	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	m.orders[order.OrderID] = stored
	return nil
}

func (m *MemoryRepository) FindByOrderID(_ context.Context, orderID string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &o, nil
}

// Count is the number of stored orders.
func (m *MemoryRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}
