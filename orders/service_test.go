package orders

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"recipebook/models"
)

type recordingPublisher struct {
	mu     sync.Mutex
	orders []*models.Order
}

func (p *recordingPublisher) Publish(order *models.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, order)
}

func intp(n int) *int { return &n }

func validRequest() models.PlaceOrderRequest {
	return models.PlaceOrderRequest{
		Address:     "1 Main St",
		PhoneNumber: "555-0100",
		Items: []models.OrderItemRequest{
			{ItemID: primitive.NewObjectID().Hex(), Quantity: intp(2)},
			{ItemID: primitive.NewObjectID().Hex(), Quantity: intp(0)},
		},
	}
}

func TestPlace_StoresRetrievableOrder(t *testing.T) {
	repo := NewMemoryRepository()
	pub := &recordingPublisher{}
	svc := NewService(repo, pub, zap.NewNop())
	ctx := context.Background()

	req := validRequest()
	order, err := svc.Place(ctx, req)
	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderID)
	assert.NotEqual(t, order.ID.Hex(), order.OrderID)
	assert.False(t, order.CreatedAt.IsZero())

	got, err := svc.Get(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", got.Address)
	assert.Equal(t, "555-0100", got.PhoneNumber)
	require.Len(t, got.Items, 2)
	assert.Equal(t, req.Items[0].ItemID, got.Items[0].ItemID.Hex())
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, 0, got.Items[1].Quantity)

	require.Len(t, pub.orders, 1)
	assert.Equal(t, order.OrderID, pub.orders[0].OrderID)
}

func TestPlace_OrderIDsAreFresh(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, zap.NewNop())
	a, err := svc.Place(context.Background(), validRequest())
	require.NoError(t, err)
	b, err := svc.Place(context.Background(), validRequest())
	require.NoError(t, err)
	assert.NotEqual(t, a.OrderID, b.OrderID)
}

func TestPlace_NoItemsIsAccepted(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, nil, zap.NewNop())
	order, err := svc.Place(context.Background(), models.PlaceOrderRequest{Address: "a", PhoneNumber: "p"})
	require.NoError(t, err)
	assert.Empty(t, order.Items)
	assert.Equal(t, 1, repo.Count())
}

func TestPlace_ValidationPersistsNothing(t *testing.T) {
	tests := map[string]func(*models.PlaceOrderRequest){
		"missing address":  func(r *models.PlaceOrderRequest) { r.Address = "" },
		"missing phone":    func(r *models.PlaceOrderRequest) { r.PhoneNumber = "" },
		"missing item id":  func(r *models.PlaceOrderRequest) { r.Items[0].ItemID = "" },
		"missing quantity": func(r *models.PlaceOrderRequest) { r.Items[1].Quantity = nil },
		"malformed id":     func(r *models.PlaceOrderRequest) { r.Items[0].ItemID = "pancakes" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewMemoryRepository()
			pub := &recordingPublisher{}
			svc := NewService(repo, pub, zap.NewNop())

			req := validRequest()
			mutate(&req)
			_, err := svc.Place(context.Background(), req)

			assert.ErrorIs(t, err, models.ErrValidation)
			assert.Equal(t, 0, repo.Count())
			assert.Empty(t, pub.orders)
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil, zap.NewNop())
	_, err := svc.Get(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
