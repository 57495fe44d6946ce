package orders

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"recipebook/models"
)

// Publisher receives every order once it is stored.
type Publisher interface {
	Publish(order *models.Order)
}

// Service is the order manager. Orders are not tied to a user or a cart
// and placing one leaves the cart as it is.
type Service struct {
	repo   Repository
	pub    Publisher
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, pub Publisher, logger *zap.Logger) *Service {
	return &Service{repo: repo, pub: pub, logger: logger, now: time.Now}
}

// Place checks the submission, assigns a fresh orderId and stores the
// order. Nothing is written when a required field is missing.
func (s *Service) Place(ctx context.Context, req models.PlaceOrderRequest) (*models.Order, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for i, it := range req.Items {
		id, err := primitive.ObjectIDFromHex(it.ItemID)
		if err != nil {
			return nil, fmt.Errorf("items[%d].itemId %q: %w", i, it.ItemID, models.ErrValidation)
		}
		items = append(items, models.OrderItem{ItemID: id, Quantity: *it.Quantity})
	}

	order := &models.Order{
		OrderID:     primitive.NewObjectID().Hex(),
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		Items:       items,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Insert(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("orderId", order.OrderID),
		zap.Int("items", len(order.Items)),
	)
	if s.pub != nil {
		s.pub.Publish(order)
	}
	return order, nil
}

// Get returns the order with the given orderId.
func (s *Service) Get(ctx context.Context, orderID string) (*models.Order, error) {
	if orderID == "" {
		return nil, models.ErrNotFound
	}
	return s.repo.FindByOrderID(ctx, orderID)
}
