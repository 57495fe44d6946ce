package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order is immutable once stored. OrderID is generated independently of
// the storage id.
type Order struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	OrderID     string             `json:"orderId" bson:"orderId" validate:"required"`
	Address     string             `json:"address" bson:"address" validate:"required"`
	PhoneNumber string             `json:"phoneNumber" bson:"phoneNumber" validate:"required"`
	Items       []OrderItem        `json:"items" bson:"items" validate:"dive"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
}

type OrderItem struct {
	ItemID   primitive.ObjectID `json:"itemId" bson:"itemId" validate:"required"`
	Quantity int                `json:"quantity" bson:"quantity"`
}

// PlaceOrderRequest is the checkout submission as it arrives. Quantity is
// a pointer so that a present zero is told apart from a missing field.
type PlaceOrderRequest struct {
	Address     string             `json:"address" validate:"required"`
	PhoneNumber string             `json:"phoneNumber" validate:"required"`
	Items       []OrderItemRequest `json:"items" validate:"dive"`
}

type OrderItemRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	Quantity *int   `json:"quantity" validate:"required"`
}
